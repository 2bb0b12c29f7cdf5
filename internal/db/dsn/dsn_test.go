package dsn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diveerp/diveerp/internal/config"
	"github.com/diveerp/diveerp/internal/db/dsn"
)

func TestCreate(t *testing.T) {
	base := config.DB{
		Host:     "db.local",
		Port:     3306,
		User:     "dive",
		Password: "secret",
		Name:     "diveerp",
	}

	tests := []struct {
		name   string
		engine string
		extras string
		path   string
		want   string
	}{
		{
			name:   "mysql",
			engine: config.EngineMySQL,
			extras: "charset=utf8mb4&parseTime=True",
			want:   "dive:secret@tcp(db.local:3306)/diveerp?charset=utf8mb4&parseTime=True",
		},
		{
			name:   "empty engine is mysql",
			engine: "",
			want:   "dive:secret@tcp(db.local:3306)/diveerp?",
		},
		{
			name:   "postgres",
			engine: config.EnginePostgres,
			extras: "sslmode=disable&TimeZone=UTC",
			want:   "host=db.local port=3306 user=dive password=secret dbname=diveerp sslmode=disable TimeZone=UTC",
		},
		{
			name:   "sqlite file",
			engine: config.EngineSQLite,
			path:   "/var/lib/diveerp/diveerp.db",
			extras: "_pragma=foreign_keys(1)",
			want:   "/var/lib/diveerp/diveerp.db?_pragma=foreign_keys(1)",
		},
		{
			name:   "sqlite without path",
			engine: config.EngineSQLite,
			want:   dsn.MemorySQLite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := base
			db.GormEngine = tt.engine
			db.Extras = tt.extras
			db.Path = tt.path

			assert.Equal(t, tt.want, dsn.Create(&config.Config{DB: db}))
		})
	}
}
