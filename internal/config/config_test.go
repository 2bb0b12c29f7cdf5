package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectConfigPath(t *testing.T) string {
	t.Helper()

	// Get the project root by going up from internal/config
	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err)

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Title)
	assert.NotZero(t, cfg.Webserver.Port)
	assert.NotEmpty(t, cfg.Webserver.URL)
	assert.NotEmpty(t, cfg.DB.Host)
	assert.Equal(t, EngineMySQL, cfg.DB.GormEngine)
	assert.Equal(t, 5*time.Second, cfg.DB.Timeout)
	assert.Equal(t, 168*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
	assert.Len(t, cfg.Webserver.AllowOrigins, 3)
}

func TestConfigValidation(t *testing.T) {
	valid := func() Config {
		return Config{
			Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
			Auth:      Auth{JWTSecret: "secret"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Webserver.Port = 0 }, wantErr: ErrWebServerPortCanNotBeZero},
		{name: "missing URL", mutate: func(c *Config) { c.Webserver.URL = "" }, wantErr: ErrEmptyURL},
		{name: "missing jwt secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: ErrEmptyJWTSecret},
		{name: "unknown engine", mutate: func(c *Config) { c.DB.GormEngine = "oracle" }, wantErr: ErrUnknownGormEngine},
		{
			name: "shared limiter storage on sqlite",
			mutate: func(c *Config) {
				c.DB.GormEngine = EngineSQLite
				c.RateLimit.SharedStorage = true
			},
			wantErr: ErrSharedStorageEngine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)

			err := validate(&c)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateAppliesDefaults(t *testing.T) {
	c := Config{
		Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
		Auth:      Auth{JWTSecret: "secret"},
	}

	require.NoError(t, validate(&c))

	assert.Equal(t, EngineMySQL, c.DB.GormEngine)
	assert.Equal(t, defaultShutDownTime, c.Webserver.ShutDownTime)
	assert.Equal(t, defaultDBTimeout, c.DB.Timeout)
	assert.Equal(t, defaultAccessTokenTTL, c.Auth.AccessTokenTTL)
	assert.Equal(t, defaultRefreshTokenTTL, c.Auth.RefreshTokenTTL)
	assert.Equal(t, defaultRateLimitMax, c.RateLimit.Max)
	assert.Equal(t, defaultCacheSize, c.Cache.Size)
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, `{"Title":"Test Override","Webserver":{"Port":9090},"DB":{"GormEngine":"sqlite"}}`)

	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.Equal(t, "Test Override", cfg.Title)
	assert.Equal(t, 9090, cfg.Webserver.Port)
	assert.Equal(t, EngineSQLite, cfg.DB.GormEngine)
	// untouched values survive the merge
	assert.Equal(t, "http://localhost:3000", cfg.Webserver.URL)
}

func TestReadConfigBrokenJSONOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, `{"Title":`)

	_, err := ReadConfig(projectConfigPath(t))
	assert.Error(t, err)
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{
		Title:     "Test",
		DevMode:   true,
		Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
	}

	tomlStr, err := DumpConfig(&cfg)
	require.NoError(t, err)
	assert.True(t, strings.Contains(tomlStr, "Test"))

	jsonStr, err := DumpConfigJSON(&cfg)
	require.NoError(t, err)
	assert.Contains(t, jsonStr, `"Title": "Test"`)
}
