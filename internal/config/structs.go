package config

import (
	"time"

	"github.com/diveerp/diveerp/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Cache     Cache
	RateLimit RateLimit
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool     // disable recover middleware
	Port           int      // listening port for the webserver
	ShutDownTime   int      // wait time for shutdown
	URL            string   // base url for the webserver
	AllowOrigins   []string // CORS origins of the admin frontends
	ProxyHeader    string   // header holding the client IP behind a reverse proxy, e.g. X-Forwarded-For
	TrustedProxies []string // when set, ProxyHeader is only honoured from these addresses
}

// Auth holds bearer token settings.
type Auth struct {
	JWTSecret       string        // HMAC secret for signing tokens
	Issuer          string        // iss claim
	AccessTokenTTL  time.Duration // lifetime of access tokens
	RefreshTokenTTL time.Duration // lifetime of refresh tokens
}

// Cache configures the optional permission cache.
// Resolved permission sets are invalidated on every committed store mutation.
type Cache struct {
	Enabled bool
	Size    int
	TTL     time.Duration
}

// RateLimit configures the /api request limiter.
type RateLimit struct {
	Enabled       bool
	Max           int
	Window        time.Duration
	SharedStorage bool // keep limiter counters in the database (mysql/postgres only)
}
