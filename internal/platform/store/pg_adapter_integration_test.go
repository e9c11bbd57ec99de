//go:build integration_pg
// +build integration_pg

package store

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

type imageRow struct {
	Directory string
	Bytes     int64
}

func scanImageRow(r Row) (imageRow, error) {
	var x imageRow
	err := r.Scan(&x.Directory, &x.Bytes)
	return x, err
}

func openTestPG(ctx context.Context, t *testing.T, dsn string) *pgAdapter {
	t.Helper()
	s := &Store{Log: zerolog.New(io.Discard)}
	cfg := Config{AppName: "allsky-store-it", PG: PGConfig{URL: dsn, MaxConns: 2, LogSQL: true}}
	txr, err := openPG(ctx, cfg, s)
	if err != nil {
		t.Fatalf("openPG failed: %v", err)
	}
	a, ok := txr.(*pgAdapter)
	if !ok {
		t.Fatalf("openPG returned %T", txr)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestPGAdapter_Integration_CatalogueReads(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	a := openTestPG(ctx, t, dsn)

	if _, err := a.Exec(ctx, `
		CREATE TABLE images (
			directory            TEXT PRIMARY KEY,
			timestamp_middle_utc TIMESTAMPTZ NOT NULL,
			filesize_bytes       BIGINT NOT NULL
		)
	`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	tag, err := a.Exec(ctx, `INSERT INTO images VALUES
		('20200101/b.jpg', '2020-01-01 14:00:00+00', 9000000),
		('20200101/a.jpg', '2020-01-01 13:30:00+00', 10600000)`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if tag.RowsAffected() != 2 {
		t.Fatalf("rows affected = %d", tag.RowsAffected())
	}

	n, err := Scalar[int64](ctx, a, `SELECT count(*) FROM images`)
	if err != nil || n != 2 {
		t.Fatalf("count = %d %v", n, err)
	}

	var got []imageRow
	err = a.Tx(WithReadOnly(ctx), func(q RowQuerier) error {
		var err error
		got, err = Many(ctx, q, scanImageRow, int(n), `SELECT directory, filesize_bytes FROM images ORDER BY directory`)
		return err
	})
	if err != nil {
		t.Fatalf("read tx: %v", err)
	}
	if len(got) != 2 || got[0].Directory != "20200101/a.jpg" || got[1].Bytes != 9_000_000 {
		t.Fatalf("rows = %#v", got)
	}

	app, err := Scalar[string](ctx, a, `SELECT current_setting('application_name')`)
	if err != nil || app != "allsky-store-it" {
		t.Fatalf("application_name = %q %v", app, err)
	}
}

func TestPGAdapter_Integration_ReadOnlyTxRejectsWrites(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	a := openTestPG(ctx, t, dsn)
	if _, err := a.Exec(ctx, `CREATE TABLE marks (n INT NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	err := a.Tx(WithReadOnly(ctx), func(q RowQuerier) error {
		_, err := q.Exec(ctx, `INSERT INTO marks VALUES (1)`)
		return err
	})
	if err == nil {
		t.Fatal("insert inside a read only tx should fail")
	}

	if err := a.Tx(ctx, func(q RowQuerier) error {
		_, err := q.Exec(ctx, `INSERT INTO marks VALUES (2)`)
		return err
	}); err != nil {
		t.Fatalf("write tx: %v", err)
	}

	_ = a.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, `INSERT INTO marks VALUES (3)`); err != nil {
			return err
		}
		return fmt.Errorf("rollback")
	})

	total, err := Scalar[int64](ctx, a, `SELECT coalesce(sum(n), 0) FROM marks`)
	if err != nil || total != 2 {
		t.Fatalf("sum = %d %v, want only the committed row", total, err)
	}
}
