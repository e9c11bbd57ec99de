package version

import "testing"

func TestInfoDefaultsAndService(t *testing.T) {
	orig := service
	t.Cleanup(func() { service = orig })

	bi := Info()
	if bi.Service != "allsky-api" || bi.Version != "dev" || bi.Commit != "none" {
		t.Fatalf("defaults = %+v", bi)
	}

	Service("")
	if Info().Service != "allsky-api" {
		t.Fatal("empty name should keep the current service")
	}
	Service("allskyctl")
	if Info().Service != "allskyctl" {
		t.Fatalf("service = %q", Info().Service)
	}
}
