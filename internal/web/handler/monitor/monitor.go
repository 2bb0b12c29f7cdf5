// Package monitor provides the system monitoring endpoints.
package monitor

import (
	"os"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/db/store"
	"github.com/diveerp/diveerp/internal/web/handler"
)

const (
	// Path is the base path for monitoring.
	Path = handler.APIPath + "/monitor"

	// OnlineWindow is how recently a user must have been updated to count as online.
	OnlineWindow = 30 * time.Minute

	// OnlineLimit caps the online user list.
	OnlineLimit = 100
)

// Service is the monitor handler service.
type Service struct {
	handler.Service
	store   *store.Store
	started time.Time
}

// Handler is the exported instance.
var Handler = Service{}

// Total is a single row count.
type Total struct {
	Total int64 `json:"total"`
}

// Statistics are the entity counts of the overview.
type Statistics struct {
	Users struct {
		Total  int64 `json:"total"`
		Active int64 `json:"active"`
	} `json:"users"`
	Roles       Total `json:"roles"`
	Permissions Total `json:"permissions"`
	Menus       Total `json:"menus"`
}

// System describes the running process.
type System struct {
	Hostname   string `json:"hostname"`
	Platform   string `json:"platform"`
	Arch       string `json:"arch"`
	CPUCount   int    `json:"cpuCount"`
	GoVersion  string `json:"goVersion"`
	Goroutines int    `json:"goroutines"`
	Uptime     string `json:"uptime"`
}

// Overview is the body of the overview reply.
type Overview struct {
	Statistics Statistics `json:"statistics"`
	System     System     `json:"system"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.store = deps.Store
	s.started = time.Now()

	g := deps.Guard

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.Authenticated(g), auth.RequirePermission(g, auth.PermMonitorRead))
		router.Get("/overview", s.Overview)
		router.Get("/online-users", s.OnlineUsers)
	})

	return nil
}

// Overview returns entity counts and runtime information.
func (s *Service) Overview(c *fiber.Ctx) error {
	counts, err := s.store.Counts(c.UserContext())
	if err != nil {
		return err //nolint:wrapcheck
	}

	hostname, err := os.Hostname()
	if err != nil {
		log.Debug().Err(err).Msg("hostname unavailable")
	}

	var out Overview

	out.Statistics.Users.Total = counts.Users
	out.Statistics.Users.Active = counts.ActiveUsers
	out.Statistics.Roles.Total = counts.Roles
	out.Statistics.Permissions.Total = counts.Permissions
	out.Statistics.Menus.Total = counts.Menus

	out.System = System{
		Hostname:   hostname,
		Platform:   runtime.GOOS,
		Arch:       runtime.GOARCH,
		CPUCount:   runtime.NumCPU(),
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		Uptime:     time.Since(s.started).Truncate(time.Second).String(),
	}

	return handler.OK(c, out)
}

// OnlineUsers returns active users updated within OnlineWindow.
func (s *Service) OnlineUsers(c *fiber.Ctx) error {
	users, err := s.store.RecentlyActiveUsers(c.UserContext(), time.Now().Add(-OnlineWindow), OnlineLimit)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.OK(c, users)
}
