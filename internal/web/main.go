// Package web assembles the fiber application: middleware chain, metrics
// endpoint, rate limiting and the JSON handlers.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/diveerp/diveerp/internal/config"
	accesslog "github.com/diveerp/diveerp/internal/logger/adapter/fiber"
	"github.com/diveerp/diveerp/internal/web/handler"
	"github.com/diveerp/diveerp/internal/web/handler/admin/menu"
	"github.com/diveerp/diveerp/internal/web/handler/admin/permission"
	"github.com/diveerp/diveerp/internal/web/handler/admin/role"
	"github.com/diveerp/diveerp/internal/web/handler/admin/user"
	"github.com/diveerp/diveerp/internal/web/handler/health"
	"github.com/diveerp/diveerp/internal/web/handler/login"
	"github.com/diveerp/diveerp/internal/web/handler/logout"
	"github.com/diveerp/diveerp/internal/web/handler/monitor"
	"github.com/diveerp/diveerp/internal/web/ratelimit"
)

// MetricsPath exposes the prometheus registry.
const MetricsPath = "/metrics"

// Service represents the web service.
type Service struct {
	App            *fiber.App
	cfg            *config.Config
	fastShutDown   bool
	alive          atomic.Bool
	limiterStorage fiber.Storage
}

// Alive reports whether the service still accepts traffic.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown blocks until SIGINT or SIGTERM and then shuts down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so the health check returns 503.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown

	if s.limiterStorage != nil {
		if err := s.limiterStorage.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close rate limit storage")
		}
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates the web service and registers every handler on deps.
func New(cfg *config.Config, deps *handler.Deps) (*Service, error) {
	if cfg == nil || !deps.Valid() {
		return nil, handler.ErrNilDeps
	}

	appName := cfg.Title
	if appName == "" {
		appName = "diveerp"
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize:          8192,
			AppName:                 appName,
			CaseSensitive:           true,
			Prefork:                 false,
			Immutable:               true,
			ErrorHandler:            handler.ErrorHandler,
			ProxyHeader:             cfg.Webserver.ProxyHeader,
			EnableTrustedProxyCheck: len(cfg.Webserver.TrustedProxies) > 0,
			TrustedProxies:          cfg.Webserver.TrustedProxies,
		},
	)

	service := &Service{
		cfg:          cfg,
		App:          app,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(requestid.New())
	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: health.Path,
	}))
	app.Use(helmet.New())
	app.Use(cors.New(corsConfig(cfg.Webserver)))

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	if cfg.RateLimit.Enabled {
		storage, err := ratelimit.Storage(cfg)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		service.limiterStorage = storage
		app.Use(handler.APIPath, ratelimit.New(cfg.RateLimit, storage))
	}

	deps.Alive = service.Alive

	handlers := []handler.Service{
		&health.Handler,
		&login.Handler,
		&logout.Handler,
		&user.Handler,
		&role.Handler,
		&permission.Handler,
		&menu.Handler,
		&monitor.Handler,
	}

	for _, h := range handlers {
		if err := h.Init(app, deps); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	return service, nil
}

func corsConfig(ws config.Webserver) cors.Config {
	origins := "*"
	if len(ws.AllowOrigins) > 0 {
		origins = strings.Join(ws.AllowOrigins, ",")
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
	}
}
