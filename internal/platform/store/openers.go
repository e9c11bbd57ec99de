package store

import (
	"context"
	"fmt"
	"time"

	chx "allsky/internal/platform/store/ch"
	"allsky/internal/platform/store/pg"
	"allsky/internal/platform/store/sqlite"
)

// ping backoff for openPG; vars so tests can shrink them
var (
	pgMaxAttempts    = 20
	pgPingTimeout    = 3 * time.Second
	pgBackoffStart   = 150 * time.Millisecond
	pgBackoffCeiling = 2 * time.Second
)

// openPG opens pg and wraps it with our sql adapter once the pool answers
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  cfg.AppName,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	var lastErr error
	backoff := pgBackoffStart
	for i := 0; i < pgMaxAttempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pgPingTimeout)
		lastErr = p.Pool.Ping(toCtx)
		cancel()

		if lastErr == nil {
			return newPGAdapter(p), nil
		}
		if ctx.Err() != nil {
			p.Close()
			return nil, ctx.Err()
		}
		s.Log.Warn().Err(lastErr).Int("attempt", i+1).Dur("backoff", backoff).Msg("postgres not ready")
		select {
		case <-ctx.Done():
			p.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, pgBackoffCeiling)
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", pgMaxAttempts, lastErr)
}

func openSQLite(ctx context.Context, cfg Config) (TxRunner, error) {
	db, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLite.Path, ReadOnly: cfg.SQLite.ReadOnly})
	if err != nil {
		return nil, err
	}
	return newSQLAdapter(db), nil
}

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{
		URL:         cfg.CH.URL,
		Role:        cfg.AppName,
		Tag:         cfg.Version,
		DialTimeout: cfg.CH.DialTimeout,
	})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}
