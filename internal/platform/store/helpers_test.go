package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// sliceRows iterates over in-memory rows
type sliceRows struct {
	cols   []string
	data   [][]any
	idx    int
	err    error
	closed bool
}

func (r *sliceRows) Next() bool {
	if r.err != nil {
		return false
	}
	r.idx++
	return r.idx <= len(r.data)
}

func (r *sliceRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return errors.New("dest len mismatch")
	}
	for i := range dest {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *sliceRows) Err() error        { return r.err }
func (r *sliceRows) Close()            { r.closed = true }
func (r *sliceRows) Columns() []string { return r.cols }

type scalarRow struct {
	v   any
	err error
}

func (r scalarRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	reflect.ValueOf(dest[0]).Elem().Set(reflect.ValueOf(r.v))
	return nil
}

type fakeQuerier struct {
	rows     *sliceRows
	queryErr error
	row      scalarRow
	sql      string
}

func (f *fakeQuerier) Exec(context.Context, string, ...any) (CommandTag, error) { return nil, nil }
func (f *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (Rows, error) {
	f.sql = sql
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}
func (f *fakeQuerier) QueryRow(_ context.Context, sql string, _ ...any) Row {
	f.sql = sql
	return f.row
}

type sized struct {
	Dir   string
	Bytes int64
}

func scanSized(r Row) (sized, error) {
	var s sized
	err := r.Scan(&s.Dir, &s.Bytes)
	return s, err
}

func TestScalar(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{row: scalarRow{v: int64(42)}}
	n, err := Scalar[int64](context.Background(), q, "select count(*) from images")
	if err != nil || n != 42 {
		t.Fatalf("Scalar = %d %v", n, err)
	}

	q.row = scalarRow{err: errors.New("no rows")}
	if n, err := Scalar[int64](context.Background(), q, "x"); err == nil || n != 0 {
		t.Fatalf("want zero and error, got %d %v", n, err)
	}
}

func TestMany(t *testing.T) {
	t.Parallel()

	rows := &sliceRows{data: [][]any{{"20200101/a.jpg", int64(1)}, {"20200101/b.jpg", int64(2)}}}
	q := &fakeQuerier{rows: rows}
	got, err := Many(context.Background(), q, scanSized, 2, "select directory, filesize_bytes from images")
	if err != nil {
		t.Fatalf("Many: %v", err)
	}
	want := []sized{{"20200101/a.jpg", 1}, {"20200101/b.jpg", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
	if !rows.closed {
		t.Fatal("rows not closed")
	}
}

func TestMany_EmptyIsNonNil(t *testing.T) {
	t.Parallel()

	got, err := Many(context.Background(), &fakeQuerier{rows: &sliceRows{}}, scanSized, -1, "x")
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("got %#v %v", got, err)
	}
}

func TestMany_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Many(context.Background(), &fakeQuerier{queryErr: errors.New("down")}, scanSized, 0, "x"); err == nil {
		t.Fatal("expected query error")
	}

	bad := &sliceRows{data: [][]any{{"only one column"}}}
	if _, err := Many(context.Background(), &fakeQuerier{rows: bad}, scanSized, 0, "x"); err == nil {
		t.Fatal("expected scan error")
	}
	if !bad.closed {
		t.Fatal("rows not closed after scan error")
	}

	iterErr := &sliceRows{err: errors.New("conn reset")}
	if _, err := Many(context.Background(), &fakeQuerier{rows: iterErr}, scanSized, 0, "x"); err == nil || err.Error() != "conn reset" {
		t.Fatalf("expected iteration error, got %v", err)
	}
}
