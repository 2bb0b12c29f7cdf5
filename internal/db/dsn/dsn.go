// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/diveerp/diveerp/internal/config"
)

// MemorySQLite is the DSN of a private in-memory sqlite database.
const MemorySQLite = ":memory:"

// Create builds the Data Source Name for the configured gorm engine.
func Create(cfg *config.Config) string {
	db := cfg.DB

	switch db.GormEngine {
	case config.EnginePostgres:
		out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			db.Host,
			db.Port,
			db.User,
			db.Password,
			db.Name,
		)
		if db.Extras != "" {
			// extras are query style (sslmode=disable&TimeZone=UTC)
			out += " " + strings.ReplaceAll(db.Extras, "&", " ")
		}

		return out
	case config.EngineSQLite:
		if db.Path == "" {
			return MemorySQLite
		}

		if db.Extras != "" {
			return db.Path + "?" + db.Extras
		}

		return db.Path
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			db.User,
			db.Password,
			db.Host,
			db.Port,
			db.Name,
			db.Extras,
		)
	}
}
