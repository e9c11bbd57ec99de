package store

import (
	"time"

	"allsky/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string
	Version string

	PG     PGConfig
	CH     CHConfig
	SQLite SQLiteConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled     bool
	URL         string
	DialTimeout time.Duration
}

// SQLiteConfig configures the sqlite catalogue file
type SQLiteConfig struct {
	Enabled  bool
	Path     string
	ReadOnly bool
}

// ConfigFromEnv reads SERVICE_PGSQL_*, SERVICE_CLICKHOUSE_* and SERVICE_SQLITE_*.
// A backend is enabled when its url or path is set
func ConfigFromEnv(c config.Conf, appName, version string) Config {
	pg := c.Prefix("SERVICE_PGSQL_")
	ch := c.Prefix("SERVICE_CLICKHOUSE_")
	lite := c.Prefix("SERVICE_SQLITE_")

	cfg := Config{
		AppName: appName,
		Version: version,
		PG: PGConfig{
			URL:         pg.MayString("DBURL", ""),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 4)),
			LogSQL:      pg.MayBool("LOG_SQL", false),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
		},
		CH: CHConfig{
			URL:         ch.MayString("DBURL", ""),
			DialTimeout: ch.MayDuration("DIAL_TIMEOUT", 5*time.Second),
		},
		SQLite: SQLiteConfig{
			Path:     lite.MayString("PATH", ""),
			ReadOnly: lite.MayBool("READ_ONLY", true),
		},
	}
	cfg.PG.Enabled = cfg.PG.URL != ""
	cfg.CH.Enabled = cfg.CH.URL != ""
	cfg.SQLite.Enabled = cfg.SQLite.Path != ""
	return cfg
}
