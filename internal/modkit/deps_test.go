package modkit

import (
	"testing"

	"allsky/internal/platform/config"
	"allsky/internal/platform/store"

	"github.com/rs/zerolog"
)

func TestDepsFromStore(t *testing.T) {
	t.Parallel()

	cfg := config.New().Prefix("ALLSKY_")
	d := DepsFromStore(zerolog.Nop(), cfg, nil)
	if d.PG != nil || d.Lite != nil || d.CH != nil {
		t.Fatalf("nil store should leave seams nil: %+v", d)
	}
	if d.Cfg.Key("X") != "ALLSKY_X" {
		t.Fatalf("cfg not carried: %s", d.Cfg.Key("X"))
	}

	s := &store.Store{}
	d = DepsFromStore(zerolog.Nop(), cfg, s)
	if d.PG != nil || d.CH != nil {
		t.Fatalf("empty store should leave seams nil: %+v", d)
	}
}
