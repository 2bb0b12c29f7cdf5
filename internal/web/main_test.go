package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/config"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store"
	"github.com/diveerp/diveerp/internal/db/store/storetest"
	"github.com/diveerp/diveerp/internal/rbac"
	"github.com/diveerp/diveerp/internal/web"
	"github.com/diveerp/diveerp/internal/web/handler"
	"github.com/diveerp/diveerp/internal/web/handler/monitor"
	"github.com/diveerp/diveerp/internal/web/navigation"
)

type reply struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       json.RawMessage     `json:"data"`
	Pagination *handler.Pagination `json:"pagination"`
	Permission string              `json:"permission"`
}

type fixture struct {
	t     *testing.T
	svc   *web.Service
	store *store.Store
}

func newFixture(t *testing.T, opts ...func(*config.Config)) *fixture {
	t.Helper()

	s := storetest.New(t)
	cfg := &config.Config{
		Title: "diveerp-test",
		Auth: config.Auth{
			JWTSecret:       "test-secret",
			Issuer:          "diveerp-test",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
		},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	deps := &handler.Deps{
		Cfg:   cfg,
		Store: s,
		Guard: auth.NewGuard(auth.NewTokenService(cfg.Auth), auth.NewResolver(s)),
		Local: auth.NewLocalProvider(s),
		Admin: rbac.NewService(s),
		Menus: navigation.NewBuilder(s),
	}

	svc, err := web.New(cfg, deps)
	require.NoError(t, err)

	return &fixture{t: t, svc: svc, store: s}
}

func (f *fixture) do(method, path, token string, body any) (int, reply) {
	f.t.Helper()

	var rd io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(f.t, err)

		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.svc.App.Test(req, -1)
	require.NoError(f.t, err)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(f.t, err)

	var out reply
	if len(raw) > 0 && json.Valid(raw) {
		require.NoError(f.t, json.Unmarshal(raw, &out))
	}

	return resp.StatusCode, out
}

func (f *fixture) login(username string) string {
	f.t.Helper()

	status, out := f.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username, "password": "secret",
	})
	require.Equal(f.t, http.StatusOK, status, out.Message)

	var data struct {
		AccessToken string   `json:"accessToken"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(f.t, json.Unmarshal(out.Data, &data))
	require.NotEmpty(f.t, data.AccessToken)

	return data.AccessToken
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	status, out := f.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, out.Success)
	assert.True(t, f.svc.Alive())

	resp, err := f.svc.App.Test(httptest.NewRequest(http.MethodGet, web.MetricsPath, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)

	read := storetest.Permission(t, f.store, auth.PermStudentRead, "student", models.ActionRead)
	storetest.User(t, f.store, "staff1", storetest.Role(t, f.store, "staff", read))

	status, out := f.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "staff1", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid username or password", out.Message)

	token := f.login("staff1")

	status, out = f.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)

	var me struct {
		Username    string   `json:"username"`
		Password    string   `json:"password"`
		Roles       []string `json:"roles"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &me))
	assert.Equal(t, "staff1", me.Username)
	assert.Empty(t, me.Password)
	assert.Equal(t, []string{"staff"}, me.Roles)
	assert.Equal(t, []string{auth.PermStudentRead}, me.Permissions)

	status, out = f.do(http.MethodPost, "/api/auth/change-password", token, map[string]string{
		"oldPassword": "nope", "newPassword": "newsecret",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Old password is incorrect", out.Message)

	status, _ = f.do(http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRateLimitKeysOnProxyHeader(t *testing.T) {
	limited := func(proxyHeader string) func(*config.Config) {
		return func(cfg *config.Config) {
			cfg.RateLimit = config.RateLimit{Enabled: true, Max: 1, Window: time.Minute}
			cfg.Webserver.ProxyHeader = proxyHeader
		}
	}

	health := func(f *fixture, client string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set(fiber.HeaderXForwardedFor, client)

		resp, err := f.svc.App.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()

		return resp.StatusCode
	}

	f := newFixture(t, limited(fiber.HeaderXForwardedFor))
	assert.Equal(t, http.StatusOK, health(f, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, health(f, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, health(f, "10.0.0.2"))

	f = newFixture(t, limited(""))
	assert.Equal(t, http.StatusOK, health(f, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, health(f, "10.0.0.2"))
}

func TestAuthorizationErrors(t *testing.T) {
	f := newFixture(t)

	read := storetest.Permission(t, f.store, auth.PermStudentRead, "student", models.ActionRead)
	storetest.User(t, f.store, "staff1", storetest.Role(t, f.store, "staff", read))
	token := f.login("staff1")

	status, out := f.do(http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, out.Success)
	assert.Equal(t, "No authentication token provided", out.Message)

	status, out = f.do(http.MethodGet, "/api/users", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid authentication token", out.Message)

	status, out = f.do(http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, auth.PermUserRead, out.Permission)
	assert.Equal(t, "Permission denied: "+auth.PermUserRead, out.Message)

	status, _ = f.do(http.MethodGet, "/api/menus/user-menus", token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRoleAdministration(t *testing.T) {
	f := newFixture(t)

	wildcard := storetest.Permission(t, f.store, auth.PermWildcard, "*", models.ActionAll)
	storetest.Permission(t, f.store, auth.PermRoomRead, "room", models.ActionRead)
	storetest.User(t, f.store, "root", storetest.Role(t, f.store, "super_admin", wildcard))
	token := f.login("root")

	status, out := f.do(http.MethodPost, "/api/roles", token, map[string]any{
		"name": "front_desk", "permission_codes": []string{auth.PermRoomRead},
	})
	require.Equal(t, http.StatusCreated, status, out.Message)

	var created models.Role
	require.NoError(t, json.Unmarshal(out.Data, &created))
	require.Len(t, created.Permissions, 1)

	status, out = f.do(http.MethodPost, "/api/roles", token, map[string]any{"name": "front_desk"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Role name already exists", out.Message)

	status, out = f.do(http.MethodPost, "/api/roles", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "name is required", out.Message)

	storetest.User(t, f.store, "clerk", &created)

	path := "/api/roles/" + strconv.FormatUint(uint64(created.ID), 10)

	status, out = f.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Cannot delete role: 1 user(s) are using this role", out.Message)

	status, out = f.do(http.MethodPut, path, token, map[string]any{"version": created.Version + 1})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = f.do(http.MethodGet, "/api/roles/999", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(http.MethodGet, "/api/roles/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, out = f.do(http.MethodGet, "/api/roles?pageSize=1", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, out.Pagination)
	assert.Equal(t, int64(2), out.Pagination.Total)
	assert.Equal(t, 2, out.Pagination.TotalPages)
}

func TestMenuEndpoints(t *testing.T) {
	f := newFixture(t)

	wildcard := storetest.Permission(t, f.store, auth.PermWildcard, "*", models.ActionAll)
	storetest.User(t, f.store, "root", storetest.Role(t, f.store, "super_admin", wildcard))
	token := f.login("root")

	status, out := f.do(http.MethodPost, "/api/menus", token, map[string]any{"name": "System", "path": "/system"})
	require.Equal(t, http.StatusCreated, status, out.Message)

	var system models.Menu
	require.NoError(t, json.Unmarshal(out.Data, &system))

	status, _ = f.do(http.MethodPost, "/api/menus", token, map[string]any{
		"name": "Users", "path": "/system/users", "parent_id": system.ID, "permission": auth.PermUserRead,
	})
	require.Equal(t, http.StatusCreated, status)

	status, out = f.do(http.MethodGet, "/api/menus/user-menus", token, nil)
	require.Equal(t, http.StatusOK, status)

	var items []navigation.Item
	require.NoError(t, json.Unmarshal(out.Data, &items))
	require.Len(t, items, 1)
	require.Len(t, items[0].Children, 1)
	assert.Equal(t, "Users", items[0].Children[0].Name)

	status, out = f.do(http.MethodDelete, "/api/menus/"+strconv.FormatUint(uint64(system.ID), 10), token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Cannot delete menu: 1 sub-menu(s) exist", out.Message)

	status, _ = f.do(http.MethodGet, "/api/menus?role_id=999", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMonitorEndpoints(t *testing.T) {
	f := newFixture(t)

	read := storetest.Permission(t, f.store, auth.PermStudentRead, "student", models.ActionRead)
	monitorRead := storetest.Permission(t, f.store, auth.PermMonitorRead, "monitor", models.ActionRead)
	ops := storetest.Role(t, f.store, "ops", monitorRead)

	storetest.User(t, f.store, "staff1", storetest.Role(t, f.store, "staff", read))
	storetest.User(t, f.store, "watcher", ops)

	stale := storetest.User(t, f.store, "stale", ops)
	require.NoError(t, f.store.DB().Model(&models.User{}).Where("id = ?", stale.ID).
		UpdateColumn("updated_at", time.Now().Add(-2*monitor.OnlineWindow)).Error)

	gone := storetest.User(t, f.store, "gone", ops)
	require.NoError(t, f.store.DB().Model(&models.User{}).Where("id = ?", gone.ID).
		UpdateColumn("status", models.StatusInactive).Error)

	staffToken := f.login("staff1")

	for _, path := range []string{"/api/monitor/overview", "/api/monitor/online-users"} {
		status, out := f.do(http.MethodGet, path, staffToken, nil)
		assert.Equal(t, http.StatusForbidden, status, path)
		assert.Equal(t, auth.PermMonitorRead, out.Permission, path)

		status, _ = f.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}

	token := f.login("watcher")

	status, out := f.do(http.MethodGet, "/api/monitor/overview", token, nil)
	require.Equal(t, http.StatusOK, status, out.Message)

	var overview monitor.Overview
	require.NoError(t, json.Unmarshal(out.Data, &overview))
	assert.EqualValues(t, 4, overview.Statistics.Users.Total)
	assert.EqualValues(t, 3, overview.Statistics.Users.Active)
	assert.EqualValues(t, 2, overview.Statistics.Roles.Total)
	assert.EqualValues(t, 2, overview.Statistics.Permissions.Total)
	assert.Zero(t, overview.Statistics.Menus.Total)
	assert.NotEmpty(t, overview.System.GoVersion)
	assert.Positive(t, overview.System.CPUCount)

	status, out = f.do(http.MethodGet, "/api/monitor/online-users", token, nil)
	require.Equal(t, http.StatusOK, status, out.Message)

	var online []models.User
	require.NoError(t, json.Unmarshal(out.Data, &online))

	usernames := make([]string, 0, len(online))
	for _, u := range online {
		usernames = append(usernames, u.Username)
	}

	assert.ElementsMatch(t, []string{"staff1", "watcher"}, usernames)

	for _, u := range online {
		assert.Len(t, u.Roles, 1, u.Username)
	}
}
