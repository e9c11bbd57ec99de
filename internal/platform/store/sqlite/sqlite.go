// Package sqlite opens a pure-go SQLite catalogue database
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Config configures the sqlite handle
type Config struct {
	Path        string
	ReadOnly    bool
	BusyTimeout time.Duration
}

// DSN renders cfg as a modernc.org/sqlite data source name
func DSN(cfg Config) string {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	var b strings.Builder
	b.WriteString(cfg.Path)
	if strings.Contains(cfg.Path, "?") {
		b.WriteByte('&')
	} else {
		b.WriteByte('?')
	}
	fmt.Fprintf(&b, "_pragma=busy_timeout(%d)", busy.Milliseconds())
	if cfg.ReadOnly {
		b.WriteString("&_pragma=query_only(1)")
	}
	return b.String()
}

// Open opens and pings the database at cfg.Path
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite: empty path")
	}
	db, err := sql.Open("sqlite", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", cfg.Path, err)
	}
	return db, nil
}
