package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
)

// sqlAdapter wraps a database/sql handle (sqlite) as RowQuerier + TxRunner
type sqlAdapter struct {
	db *sql.DB
}

func newSQLAdapter(db *sql.DB) *sqlAdapter { return &sqlAdapter{db: db} }

var (
	_ TxRunner = (*sqlAdapter)(nil)
	_ Pinger   = (*sqlAdapter)(nil)
)

func (a *sqlAdapter) Ping(ctx context.Context) error {
	if a == nil || a.db == nil {
		return errors.New("sqlite: nil adapter")
	}
	return a.db.PingContext(ctx)
}

func (a *sqlAdapter) Close() error { return a.db.Close() }

func (a *sqlAdapter) Exec(ctx context.Context, query string, args ...any) (CommandTag, error) {
	return execOn(ctx, a.db, query, args...)
}

func (a *sqlAdapter) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return queryOn(ctx, a.db, query, args...)
}

func (a *sqlAdapter) QueryRow(ctx context.Context, query string, args ...any) Row {
	return a.db.QueryRowContext(ctx, query, args...)
}

// Tx runs fn in a transaction, read only under WithReadOnly
func (a *sqlAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: IsReadOnly(ctx)})
	if err != nil {
		return err
	}
	if err := fn(sqlTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type sqlTx struct{ tx *sql.Tx }

func (t sqlTx) Exec(ctx context.Context, query string, args ...any) (CommandTag, error) {
	return execOn(ctx, t.tx, query, args...)
}

func (t sqlTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return queryOn(ctx, t.tx, query, args...)
}

func (t sqlTx) QueryRow(ctx context.Context, query string, args ...any) Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

// sqlConn is what *sql.DB and *sql.Tx share
type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func execOn(ctx context.Context, c sqlConn, query string, args ...any) (CommandTag, error) {
	res, err := c.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	return resultTag{n: n}, nil
}

func queryOn(ctx context.Context, c sqlConn, query string, args ...any) (Rows, error) {
	rs, err := c.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{r: rs}, nil
}

type sqlRows struct{ r *sql.Rows }

func (x sqlRows) Next() bool            { return x.r.Next() }
func (x sqlRows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x sqlRows) Err() error            { return x.r.Err() }
func (x sqlRows) Close()                { _ = x.r.Close() }
func (x sqlRows) Columns() []string {
	cols, _ := x.r.Columns()
	return cols
}

// resultTag renders like a pg command tag so logs read the same
type resultTag struct{ n int64 }

func (t resultTag) String() string      { return "ROWS " + strconv.FormatInt(t.n, 10) }
func (t resultTag) RowsAffected() int64 { return t.n }
