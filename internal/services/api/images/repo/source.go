// Package repo loads the image catalogue and records download audits
package repo

import (
	"context"
	"fmt"
	"os"

	"allsky/internal/core/catalogue"
)

// Source yields catalogue records in source order
type Source interface {
	Load(ctx context.Context) ([]catalogue.Record, error)
	Name() string
}

// openFile is a seam for tests
var openFile = os.Open

type csvFile struct{ path string }

// CSVFile reads the indexer CSV at path
func CSVFile(path string) Source { return csvFile{path: path} }

func (c csvFile) Name() string { return "csv" }

func (c csvFile) Load(ctx context.Context) ([]catalogue.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := openFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("open catalogue: %w", err)
	}
	defer func() { _ = f.Close() }()

	recs, err := catalogue.DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.path, err)
	}
	return recs, nil
}
