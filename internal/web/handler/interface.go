package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/config"
	"github.com/diveerp/diveerp/internal/db/store"
	"github.com/diveerp/diveerp/internal/rbac"
	"github.com/diveerp/diveerp/internal/web/navigation"
)

// Deps bundles the services the handlers are built on.
type Deps struct {
	Cfg   *config.Config
	Store *store.Store
	Guard *auth.Guard
	Local *auth.LocalProvider
	Admin *rbac.Service
	Menus *navigation.Builder
	// Alive reports false once graceful shutdown has started. Nil means always alive.
	Alive func() bool
}

// Valid reports whether every dependency is set.
func (d *Deps) Valid() bool {
	return d != nil && d.Cfg != nil && d.Store != nil && d.Guard != nil &&
		d.Local != nil && d.Admin != nil && d.Menus != nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Deps) error
}
