package rbac_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store"
	"github.com/diveerp/diveerp/internal/db/store/storetest"
	"github.com/diveerp/diveerp/internal/rbac"
)

func codes(r *models.Role) []string {
	return auth.RolePermissions(r).Codes()
}

func ptr[T any](v T) *T { return &v }

func TestCreateRole(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	svc := rbac.NewService(s)

	a := storetest.Permission(t, s, "student:read", "student", models.ActionRead)
	storetest.Permission(t, s, "room:read", "room", models.ActionRead)

	role, err := svc.CreateRole(ctx, rbac.CreateRoleInput{
		Name:            "front_desk",
		PermissionIDs:   []uint{a.ID, a.ID},
		PermissionCodes: []string{"room:read", "student:read"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, role.Status)
	assert.Equal(t, []string{"room:read", "student:read"}, codes(role))

	_, err = svc.CreateRole(ctx, rbac.CreateRoleInput{Name: "front_desk"})
	assert.True(t, apperror.Is(err, apperror.Conflict))
	assert.Equal(t, "Role name already exists", apperror.MessageOf(err))
}

func TestCreateRoleRejectsInput(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	svc := rbac.NewService(s)

	tests := []struct {
		name string
		in   rbac.CreateRoleInput
		kind apperror.Kind
		msg  string
	}{
		{
			name: "missing name",
			in:   rbac.CreateRoleInput{},
			kind: apperror.Validation,
			msg:  "name is required",
		},
		{
			name: "bad status",
			in:   rbac.CreateRoleInput{Name: "x", Status: "archived"},
			kind: apperror.Validation,
			msg:  "status must be one of: active inactive",
		},
		{
			name: "unknown permission id",
			in:   rbac.CreateRoleInput{Name: "x", PermissionIDs: []uint{99}},
			kind: apperror.NotFound,
			msg:  "Permission not found: 99",
		},
		{
			name: "unknown permission code",
			in:   rbac.CreateRoleInput{Name: "x", PermissionCodes: []string{"boat:fly"}},
			kind: apperror.NotFound,
			msg:  "Permission not found: boat:fly",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateRole(ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
			assert.Equal(t, tt.msg, apperror.MessageOf(err))
		})
	}

	_, total, err := svc.ListRoles(ctx, store.RoleFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUpdateRoleReplacesPermissions(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	svc := rbac.NewService(s)

	a := storetest.Permission(t, s, "a:read", "a", models.ActionRead)
	b := storetest.Permission(t, s, "b:read", "b", models.ActionRead)
	c := storetest.Permission(t, s, "c:read", "c", models.ActionRead)
	role := storetest.Role(t, s, "r", a, b)

	updated, err := svc.UpdateRole(ctx, role.ID, rbac.UpdateRoleInput{
		PermissionIDs: &[]uint{b.ID, c.ID},
		Version:       ptr(role.Version),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b:read", "c:read"}, codes(updated))
	assert.Equal(t, role.Version+1, updated.Version)

	n, err := s.CountRolesWithPermission(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	updated, err = svc.UpdateRole(ctx, role.ID, rbac.UpdateRoleInput{Description: ptr("desk")})
	require.NoError(t, err)
	assert.Equal(t, "desk", updated.Description)
	assert.Equal(t, []string{"b:read", "c:read"}, codes(updated), "absent list keeps permissions")

	updated, err = svc.UpdateRole(ctx, role.ID, rbac.UpdateRoleInput{PermissionIDs: &[]uint{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Permissions)
}

func TestUpdateRoleConflicts(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	svc := rbac.NewService(s)

	a := storetest.Permission(t, s, "a:read", "a", models.ActionRead)
	role := storetest.Role(t, s, "r", a)
	storetest.Role(t, s, "other")

	_, err := svc.UpdateRole(ctx, role.ID, rbac.UpdateRoleInput{Version: ptr(role.Version + 5)})
	assert.True(t, apperror.Is(err, apperror.Conflict))

	_, err = svc.UpdateRole(ctx, role.ID, rbac.UpdateRoleInput{Name: ptr("other")})
	assert.True(t, apperror.Is(err, apperror.Conflict))

	_, err = svc.UpdateRole(ctx, role.ID, rbac.UpdateRoleInput{PermissionCodes: &[]string{"nope"}})
	assert.True(t, apperror.Is(err, apperror.NotFound))

	got, err := svc.GetRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, "r", got.Name)
	assert.Equal(t, []string{"a:read"}, codes(got), "failed update leaves permissions intact")
	assert.Equal(t, role.Version, got.Version)

	_, err = svc.UpdateRole(ctx, 999, rbac.UpdateRoleInput{})
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestRevocationThroughUpdateRole(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	svc := rbac.NewService(s)
	resolver := auth.NewResolver(s)

	monitor := storetest.Permission(t, s, auth.PermMonitorRead, "monitor", models.ActionRead)
	student := storetest.Permission(t, s, auth.PermStudentRead, "student", models.ActionRead)
	role := storetest.Role(t, s, "manager", monitor, student)
	u := storetest.User(t, s, "manager1", role)

	perms, err := resolver.ResolvePermissions(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, perms.Allows(auth.PermMonitorRead))

	_, err = svc.UpdateRole(ctx, role.ID, rbac.UpdateRoleInput{PermissionCodes: &[]string{auth.PermStudentRead}})
	require.NoError(t, err)

	perms, err = resolver.ResolvePermissions(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, perms.Allows(auth.PermMonitorRead))
	assert.True(t, perms.Allows(auth.PermStudentRead))
}

func TestDeleteRole(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	svc := rbac.NewService(s)

	a := storetest.Permission(t, s, "a:read", "a", models.ActionRead)
	held := storetest.Role(t, s, "held", a)
	storetest.User(t, s, "u1", held)
	storetest.User(t, s, "u2", held)

	err := svc.DeleteRole(ctx, held.ID)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.Conflict))
	assert.Equal(t, "Cannot delete role: 2 user(s) are using this role", apperror.MessageOf(err))

	_, err = svc.GetRole(ctx, held.ID)
	require.NoError(t, err)

	unused := storetest.Role(t, s, "unused", a)
	require.NoError(t, svc.DeleteRole(ctx, unused.ID))

	_, err = svc.GetRole(ctx, unused.ID)
	assert.True(t, apperror.Is(err, apperror.NotFound))

	n, err := s.CountRolesWithPermission(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "only the held role keeps the permission")

	system := &models.Role{Name: "super_admin", Status: models.StatusActive, IsSystem: true}
	require.NoError(t, s.CreateRole(ctx, system))
	assert.True(t, apperror.Is(svc.DeleteRole(ctx, system.ID), apperror.Conflict))

	assert.True(t, apperror.Is(svc.DeleteRole(ctx, 999), apperror.NotFound))
}

func TestPermissionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	svc := rbac.NewService(s)

	p, err := svc.CreatePermission(ctx, rbac.CreatePermissionInput{
		Name: "Read boats", Code: "boat:read", Resource: "boat", Action: models.ActionRead,
	})
	require.NoError(t, err)

	_, err = svc.CreatePermission(ctx, rbac.CreatePermissionInput{
		Name: "Read boats again", Code: "boat:read", Resource: "boat", Action: models.ActionRead,
	})
	assert.Equal(t, "Permission code already exists", apperror.MessageOf(err))

	_, err = svc.CreatePermission(ctx, rbac.CreatePermissionInput{
		Name: "Fly boats", Code: "boat:fly", Resource: "boat", Action: "fly",
	})
	assert.True(t, apperror.Is(err, apperror.Validation))

	other, err := svc.CreatePermission(ctx, rbac.CreatePermissionInput{
		Name: "Write boats", Code: "boat:write", Resource: "boat", Action: models.ActionWrite,
	})
	require.NoError(t, err)

	_, err = svc.UpdatePermission(ctx, other.ID, rbac.UpdatePermissionInput{Code: ptr("boat:read")})
	assert.True(t, apperror.Is(err, apperror.Conflict))

	updated, err := svc.UpdatePermission(ctx, other.ID, rbac.UpdatePermissionInput{
		Code: ptr("boat:update"), Action: ptr(models.ActionUpdate),
	})
	require.NoError(t, err)
	assert.Equal(t, "boat:update", updated.Code)
	assert.Equal(t, models.ActionUpdate, updated.Action)

	storetest.Role(t, s, "r1", p)
	storetest.Role(t, s, "r2", p)
	storetest.Role(t, s, "r3", p)

	err = svc.DeletePermission(ctx, p.ID)
	assert.Equal(t, "Cannot delete permission: 3 role(s) are using this permission", apperror.MessageOf(err))

	require.NoError(t, svc.DeletePermission(ctx, other.ID))
	_, err = svc.GetPermission(ctx, other.ID)
	assert.True(t, apperror.Is(err, apperror.NotFound))

	_, _, err = svc.ListPermissions(ctx, store.PermissionFilter{Action: "fly"})
	assert.True(t, apperror.Is(err, apperror.Validation))
}

func TestMenuLifecycle(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	svc := rbac.NewService(s)

	_, err := svc.CreateMenu(ctx, rbac.CreateMenuInput{})
	assert.Equal(t, "name is required", apperror.MessageOf(err))

	_, err = svc.CreateMenu(ctx, rbac.CreateMenuInput{Name: "orphan", ParentID: ptr(uint(42))})
	assert.Equal(t, "Parent menu not found", apperror.MessageOf(err))

	system, err := svc.CreateMenu(ctx, rbac.CreateMenuInput{
		Name: "System", Path: "/system", Permission: ptr("user:read"), Meta: json.RawMessage(`{"title":"System"}`),
	})
	require.NoError(t, err)
	assert.True(t, system.Visible)
	assert.Equal(t, `{"title":"System"}`, system.Meta)

	users, err := svc.CreateMenu(ctx, rbac.CreateMenuInput{
		Name: "Users", Path: "/system/users", ParentID: &system.ID, Permission: ptr(""), Visible: ptr(false),
	})
	require.NoError(t, err)
	assert.False(t, users.Visible)
	assert.Nil(t, users.Permission)

	detail, err := svc.GetMenu(ctx, users.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Parent)
	assert.Equal(t, system.ID, detail.Parent.ID)
	require.Len(t, detail.Breadcrumbs, 2)
	assert.Equal(t, "System", detail.Breadcrumbs[0].Title)
	assert.True(t, detail.Breadcrumbs[1].Active)

	detail, err = svc.GetMenu(ctx, system.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Parent)
	require.Len(t, detail.Children, 1)

	err = svc.DeleteMenu(ctx, system.ID)
	assert.Equal(t, "Cannot delete menu: 1 sub-menu(s) exist", apperror.MessageOf(err))

	require.NoError(t, svc.DeleteMenu(ctx, users.ID))
	require.NoError(t, svc.DeleteMenu(ctx, system.ID))
	assert.True(t, apperror.Is(svc.DeleteMenu(ctx, system.ID), apperror.NotFound))
}

func TestUpdateMenuParent(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	svc := rbac.NewService(s)

	root := storetest.Menu(t, s, "root", nil, "")
	child := storetest.Menu(t, s, "child", root, "")
	grandchild := storetest.Menu(t, s, "grandchild", child, "")

	parse := func(body string) rbac.UpdateMenuInput {
		var in rbac.UpdateMenuInput
		require.NoError(t, json.Unmarshal([]byte(body), &in))

		return in
	}

	_, err := svc.UpdateMenu(ctx, root.ID, parse(`{"parent_id":`+jsonID(root.ID)+`}`))
	assert.True(t, apperror.Is(err, apperror.Conflict))
	assert.Equal(t, "Cannot set itself as parent", apperror.MessageOf(err))

	_, err = svc.UpdateMenu(ctx, root.ID, parse(`{"parent_id":`+jsonID(grandchild.ID)+`}`))
	assert.True(t, apperror.Is(err, apperror.Conflict))
	assert.Equal(t, "Cannot move a menu below its own descendant", apperror.MessageOf(err))

	_, err = svc.UpdateMenu(ctx, root.ID, parse(`{"parent_id":`+jsonID(child.ID)+`}`))
	assert.True(t, apperror.Is(err, apperror.Conflict))

	other := storetest.Menu(t, s, "other", nil, "")
	m, err := svc.UpdateMenu(ctx, grandchild.ID, parse(`{"parent_id":`+jsonID(other.ID)+`}`))
	require.NoError(t, err)
	require.NotNil(t, m.ParentID)
	assert.Equal(t, other.ID, *m.ParentID)

	_, err = svc.UpdateMenu(ctx, root.ID, parse(`{"parent_id":999}`))
	assert.True(t, apperror.Is(err, apperror.NotFound))
	assert.Equal(t, "Parent menu not found", apperror.MessageOf(err))

	m, err = svc.UpdateMenu(ctx, grandchild.ID, parse(`{"name":"moved","parent_id":null}`))
	require.NoError(t, err)
	assert.Nil(t, m.ParentID)
	assert.Equal(t, "moved", m.Name)

	m, err = svc.UpdateMenu(ctx, child.ID, parse(`{"order":3}`))
	require.NoError(t, err)
	require.NotNil(t, m.ParentID, "absent parent_id keeps the parent")
	assert.Equal(t, root.ID, *m.ParentID)
	assert.Equal(t, 3, m.Order)

	m, err = svc.UpdateMenu(ctx, child.ID, parse(`{"parent_id":0}`))
	require.NoError(t, err)
	assert.Nil(t, m.ParentID)
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)

	return string(b)
}

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	svc := rbac.NewService(s)

	staff := storetest.Role(t, s, "staff")
	manager := storetest.Role(t, s, "manager")
	admin := storetest.User(t, s, "admin")

	u, err := svc.CreateUser(ctx, rbac.CreateUserInput{
		Username: "diver1", Password: "secret1", Name: "Diver", RoleIDs: []uint{staff.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, models.LegacyRoleStaff, u.Role)
	assert.Equal(t, []string{"staff"}, u.RoleNames())
	assert.True(t, u.VerifyPassword("secret1"))

	_, err = svc.CreateUser(ctx, rbac.CreateUserInput{Username: "diver1", Password: "secret1", Name: "Again"})
	assert.Equal(t, "Username already exists", apperror.MessageOf(err))

	_, err = svc.CreateUser(ctx, rbac.CreateUserInput{
		Username: "diver2", Password: "secret1", Name: "Two", RoleIDs: []uint{999},
	})
	assert.Equal(t, "Role not found: 999", apperror.MessageOf(err))

	_, err = svc.CreateUser(ctx, rbac.CreateUserInput{Username: "d3", Password: "secret1", Name: "x", Email: "nope"})
	assert.True(t, apperror.Is(err, apperror.Validation))

	u, err = svc.UpdateUser(ctx, u.ID, rbac.UpdateUserInput{
		RoleIDs: &[]uint{manager.ID}, Status: ptr(models.StatusInactive),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"manager"}, u.RoleNames())
	assert.False(t, u.IsActive())

	_, err = svc.UpdateUser(ctx, u.ID, rbac.UpdateUserInput{Username: ptr("admin")})
	assert.True(t, apperror.Is(err, apperror.Conflict))

	assert.Equal(t, "Cannot delete yourself", apperror.MessageOf(svc.DeleteUser(ctx, admin.ID, admin.ID)))

	require.NoError(t, svc.DeleteUser(ctx, admin.ID, u.ID))
	_, err = svc.GetUser(ctx, u.ID)
	assert.True(t, apperror.Is(err, apperror.NotFound))

	n, err := s.CountUsersWithRole(ctx, manager.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, total, err := svc.ListUsers(ctx, store.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "admin", list[0].Username)
}
