package repo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"allsky/internal/core/catalogue"
	"allsky/internal/modkit/repokit"
	perr "allsky/internal/platform/errors"
	"allsky/internal/platform/logger"
	"allsky/internal/platform/store"
)

// Repo is the sql persistence surface for the catalogue table
type Repo interface {
	Count(ctx context.Context) (int64, error)
	Records(ctx context.Context, capHint int) ([]catalogue.Record, error)
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

type (
	// SQL is a binder that binds the catalogue table to a Queryer
	SQL struct{ table string }
	// queries implements the Repo interface
	queries struct {
		q     repokit.Queryer
		table string
	}
)

// NewSQL returns a binder for table. Table names are interpolated, so only
// plain or schema qualified identifiers are accepted
func NewSQL(table string) (repokit.Binder[Repo], error) {
	if !tableName.MatchString(table) {
		return nil, perr.InvalidArgf("invalid catalogue table %q", table)
	}
	return SQL{table: table}, nil
}

// Bind wires a Queryer to the repo
func (s SQL) Bind(q repokit.Queryer) Repo { return &queries{q: q, table: s.table} }

func (r *queries) Count(ctx context.Context) (int64, error) {
	return store.Scalar[int64](ctx, r.q, "select count(*) from "+r.table)
}

func (r *queries) Records(ctx context.Context, capHint int) ([]catalogue.Record, error) {
	sql := `
select directory, timestamp_middle_utc, filesize_bytes
from ` + r.table + `
order by directory asc
`
	return store.Many(ctx, r.q, scanRecord, capHint, sql)
}

func scanRecord(row store.Row) (catalogue.Record, error) {
	var (
		rec catalogue.Record
		ts  any
	)
	if err := row.Scan(&rec.Directory, &ts, &rec.FilesizeBytes); err != nil {
		return rec, err
	}
	t, err := asTime(ts)
	if err != nil {
		return rec, fmt.Errorf("%s: %w", rec.Directory, err)
	}
	rec.TimestampMiddleUTC = t
	return rec, nil
}

// asTime accepts what the drivers hand back for a timestamp column:
// pgx yields time.Time, sqlite yields time.Time or the stored text
func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return catalogue.ParseTimestamp(t)
	case []byte:
		return catalogue.ParseTimestamp(string(t))
	case nil:
		return time.Time{}, fmt.Errorf("null timestamp")
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
}

type sqlSource struct {
	name   string
	db     repokit.TxRunner
	binder repokit.Binder[Repo]
}

// SQLSource loads the catalogue through binder inside one read only snapshot
func SQLSource(name string, db repokit.TxRunner, binder repokit.Binder[Repo]) Source {
	if db == nil {
		panic("images.SQLSource requires a non nil TxRunner")
	}
	if binder == nil {
		panic("images.SQLSource requires a non nil Repo binder")
	}
	return sqlSource{name: name, db: db, binder: binder}
}

func (s sqlSource) Name() string { return s.name }

// loadAttempts bounds reads retried on transient database errors
const loadAttempts = 3

// retryBackoff is the wait before the second attempt, doubled after; a seam for tests
var retryBackoff = 500 * time.Millisecond

func (s sqlSource) Load(ctx context.Context) ([]catalogue.Record, error) {
	wait := retryBackoff
	for attempt := 1; ; attempt++ {
		out, err := s.load(ctx)
		if err == nil {
			return out, nil
		}
		if attempt == loadAttempts || !perr.IsRetryable(err) {
			return nil, perr.FromPostgresf(err, "load catalogue from %s", s.name)
		}
		logger.C(ctx).Warn().Err(err).Str("source", s.name).Int("attempt", attempt).Msg("catalogue load retrying")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, perr.FromPostgresf(ctx.Err(), "load catalogue from %s", s.name)
		case <-t.C:
		}
		wait *= 2
	}
}

func (s sqlSource) load(ctx context.Context) ([]catalogue.Record, error) {
	var out []catalogue.Record
	err := repokit.ReadSnapshot(ctx, s.db, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		n, err := r.Count(ctx)
		if err != nil {
			return err
		}
		out, err = r.Records(ctx, int(n))
		return err
	})
	return out, err
}
