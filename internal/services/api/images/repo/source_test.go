package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"allsky/internal/platform/testkit"
	"allsky/internal/services/api/images/imagestest"
)

func TestCSVFile_Load(t *testing.T) {
	p := imagestest.WriteCSV(t, imagestest.Night...)

	src := CSVFile(p)
	if src.Name() != SourceCSV {
		t.Fatalf("name = %q", src.Name())
	}
	recs, err := src.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != len(imagestest.Night) {
		t.Fatalf("len = %d", len(recs))
	}
	want := imagestest.Records(imagestest.Night...)
	for i := range recs {
		if recs[i].Directory != want[i].Directory ||
			!recs[i].TimestampMiddleUTC.Equal(want[i].TimestampMiddleUTC) ||
			recs[i].FilesizeBytes != want[i].FilesizeBytes {
			t.Fatalf("row %d = %+v want %+v", i, recs[i], want[i])
		}
	}
}

func TestCSVFile_Errors(t *testing.T) {
	if _, err := CSVFile(filepath.Join(t.TempDir(), "nope.csv")).Load(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(bad, []byte("Directory,Size\nx,1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := CSVFile(bad).Load(context.Background()); err == nil {
		t.Fatal("expected header error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	testkit.Swap(t, &openFile, func(string) (*os.File, error) {
		t.Fatal("should not open after cancel")
		return nil, nil
	})
	if _, err := CSVFile(bad).Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancel err = %v", err)
	}
}
