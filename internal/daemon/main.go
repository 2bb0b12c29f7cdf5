// Package daemon wires configuration, storage, authorization and the web
// service into the running application.
package daemon

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/config"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store"
	"github.com/diveerp/diveerp/internal/rbac"
	"github.com/diveerp/diveerp/internal/web"
	"github.com/diveerp/diveerp/internal/web/handler"
	"github.com/diveerp/diveerp/internal/web/navigation"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	store      *store.Store
	webService *web.Service
}

// Start serves HTTP until a shutdown signal arrives.
func (d *Daemon) Start() error {
	errc := make(chan error, 1)

	go func() {
		errc <- d.webService.Start(":" + strconv.Itoa(d.cfg.Webserver.Port))
	}()

	log.Info().Int("port", d.cfg.Webserver.Port).Msg("diveerp started")

	d.webService.WaitShutdown()

	if err := <-errc; err != nil {
		return err //nolint:wrapcheck
	}

	return d.Close()
}

// Close releases the database connections.
func (d *Daemon) Close() error {
	sqlDB, err := d.store.DB().DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	return sqlDB.Close() //nolint:wrapcheck
}

// OpenStore connects to the configured database and migrates the schema.
func OpenStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	db, err := store.Open(cfg)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	st := store.New(db, cfg.DB.Timeout)
	if err := st.Migrate(ctx, models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return st, nil
}

// NewDeps builds the authorization and administration services on st.
func NewDeps(cfg *config.Config, st *store.Store) *handler.Deps {
	var resolver auth.PermissionResolver = auth.NewResolver(st)

	if cfg.Cache.Enabled {
		resolver = auth.NewCachedResolver(resolver, st, cfg.Cache.Size, cfg.Cache.TTL)

		log.Info().Int("size", cfg.Cache.Size).Dur("ttl", cfg.Cache.TTL).Msg("permission cache enabled")
	}

	return &handler.Deps{
		Cfg:   cfg,
		Store: st,
		Guard: auth.NewGuard(auth.NewTokenService(cfg.Auth), resolver, auth.DefaultAdminChecks()...),
		Local: auth.NewLocalProvider(st),
		Admin: rbac.NewService(st),
		Menus: navigation.NewBuilder(st),
	}
}

// New creates a new Daemon: opens and migrates the database, seeds an empty
// database and assembles the web service.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	report, err := Seed(ctx, st, false)
	if err != nil {
		return nil, err
	}

	if report.Skipped {
		log.Debug().Msg("database already has users, seed skipped")
	}

	webService, err := web.New(cfg, NewDeps(cfg, st))
	if err != nil {
		return nil, fmt.Errorf("failed to create web service: %w", err)
	}

	return &Daemon{
		cfg:        cfg,
		store:      st,
		webService: webService,
	}, nil
}
