// Package ratelimit builds the request limiter of the API routes. Counters
// live in memory or, for multi-instance deployments, in a table of the
// configured mysql or postgres database.
package ratelimit

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	storagemysql "github.com/gofiber/storage/mysql/v2"
	storagepostgres "github.com/gofiber/storage/postgres/v3"

	"github.com/diveerp/diveerp/internal/config"
	"github.com/diveerp/diveerp/internal/db/dsn"
	"github.com/diveerp/diveerp/internal/web/handler"
)

// Table holds the shared limiter counters.
const Table = "rate_limits"

const (
	defaultMax    = 300
	defaultWindow = time.Minute
)

// ErrSharedStorageUnsupported is returned for engines without a shared storage driver.
var ErrSharedStorageUnsupported = errors.New("shared rate limit storage requires mysql or postgres")

// Storage returns the shared counter storage, or nil for in-memory counters.
func Storage(cfg *config.Config) (fiber.Storage, error) {
	if !cfg.RateLimit.SharedStorage {
		return nil, nil //nolint:nilnil
	}

	switch cfg.DB.GormEngine {
	case config.EngineMySQL, "":
		return storagemysql.New(storagemysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         Table,
		}), nil
	case config.EnginePostgres:
		return storagepostgres.New(storagepostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         Table,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrSharedStorageUnsupported, cfg.DB.GormEngine)
	}
}

// New returns the limiter middleware keyed by client IP. Exhausted clients
// receive 429 in the API envelope.
func New(cfg config.RateLimit, storage fiber.Storage) fiber.Handler {
	maxRequests := cfg.Max
	if maxRequests <= 0 {
		maxRequests = defaultMax
	}

	window := cfg.Window
	if window <= 0 {
		window = defaultWindow
	}

	return limiter.New(limiter.Config{
		Max:        maxRequests,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(handler.Response{
				Message: "Too many requests, please try again later",
			})
		},
		Storage: storage,
	})
}
