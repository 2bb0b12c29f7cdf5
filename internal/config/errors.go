package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrEmptyJWTSecret error if config auth.jwtsecret is empty.
	ErrEmptyJWTSecret = errors.New("toml config auth.jwtsecret can not be empty")

	// ErrUnknownGormEngine error if config db.gormengine is not supported.
	ErrUnknownGormEngine = errors.New("toml config db.gormengine must be mysql, postgres or sqlite")

	// ErrSharedStorageEngine error if the rate limiter should share state on sqlite.
	ErrSharedStorageEngine = errors.New("toml config ratelimit.sharedstorage requires mysql or postgres")

	// ErrNilConfig error if no configuration was passed.
	ErrNilConfig = errors.New("config is nil")
)
