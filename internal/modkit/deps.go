// Package modkit provides module wiring and core deps
package modkit

import (
	"allsky/internal/modkit/repokit"
	"allsky/internal/platform/config"
	"allsky/internal/platform/logger"
	"allsky/internal/platform/store"
)

// Deps holds core dependencies passed to modules.
// Every store seam is optional; nil means the backend is not configured
type Deps struct {
	Log logger.Logger
	Cfg config.Conf

	PG   repokit.TxRunner
	Lite repokit.TxRunner
	CH   store.Clickhouse
}

// DepsFromStore fills the store seams of d from an opened store
func DepsFromStore(log logger.Logger, cfg config.Conf, s *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if s == nil {
		return d
	}
	d.PG, d.Lite, d.CH = s.PG, s.Lite, s.CH
	return d
}
