// Package health provides the liveness endpoint used by load balancers.
package health

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/db/store"
	"github.com/diveerp/diveerp/internal/web/handler"
)

const (
	// Path is the liveness endpoint.
	Path = handler.APIPath + "/health"
)

// Service is the health handler service.
type Service struct {
	handler.Service
	store   *store.Store
	alive   func() bool
	started time.Time
}

// Handler is the exported instance.
var Handler = Service{}

// Status is the body of a healthy reply.
type Status struct {
	Status   string    `json:"status"`
	Uptime   string    `json:"uptime"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// Init registers the route.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.store = deps.Store
	s.alive = deps.Alive
	s.started = time.Now()

	app.Get(Path, s.Get)

	return nil
}

// Get answers 503 while shutting down or when the database is unreachable.
func (s *Service) Get(c *fiber.Ctx) error {
	if s.alive != nil && !s.alive() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(handler.Response{Message: "shutting down"})
	}

	if err := s.store.Ping(c.UserContext()); err != nil {
		return apperror.Wrap(apperror.Unavailable, err, "database unavailable")
	}

	return handler.OK(c, Status{
		Status:   "ok",
		Uptime:   time.Since(s.started).Truncate(time.Second).String(),
		Database: "ok",
		Time:     time.Now().UTC(),
	})
}
