package repo

import (
	"fmt"

	"allsky/internal/modkit/repokit"
	"allsky/internal/platform/config"
)

// Catalogue sources
const (
	SourceCSV    = "csv"
	SourcePG     = "pg"
	SourceSQLite = "sqlite"
)

// FromConfig picks the catalogue source named by SOURCE under cfg.
// pg and lite may be nil when their backend is not configured
func FromConfig(cfg config.Conf, pg, lite repokit.TxRunner) (Source, error) {
	kind := cfg.MayEnum("SOURCE", SourceCSV, SourceCSV, SourcePG, SourceSQLite)
	if kind == SourceCSV {
		return CSVFile(cfg.MayString("PATH", "image_catalogue.csv")), nil
	}

	db := pg
	if kind == SourceSQLite {
		db = lite
	}
	if db == nil {
		return nil, fmt.Errorf("catalogue source %s is not configured", kind)
	}
	binder, err := NewSQL(cfg.MayString("TABLE", "images"))
	if err != nil {
		return nil, err
	}
	return SQLSource(kind, db, binder), nil
}
