package module

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	modkit "allsky/internal/modkit"
	pmodule "allsky/internal/modkit/module"
	"allsky/internal/platform/config"
	phttp "allsky/internal/platform/net/http"
	"allsky/internal/platform/testkit"
	"allsky/internal/services/api/images/domain"
	"allsky/internal/services/api/images/imagestest"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func deps() modkit.Deps {
	return modkit.Deps{Log: zerolog.Nop(), Cfg: config.New()}
}

func TestModule_LoadAndServe(t *testing.T) {
	t.Setenv("ALLSKY_CATALOGUE_PATH", imagestest.WriteCSV(t, imagestest.Night...))
	t.Setenv("ALLSKY_IMAGES_BASE_DIR", imagestest.Tree(t, imagestest.Night...))
	t.Setenv("ALLSKY_IMAGES_TIMEZONE", "UTC")

	m := New(deps())
	if m.Name() != "images" {
		t.Fatalf("name = %q", m.Name())
	}

	cat := pmodule.MustPortsOf[domain.CataloguePort](m)
	if cat.Summary(context.Background()).Loaded {
		t.Fatal("catalogue should not be loaded before Load")
	}

	loader, ok := m.(pmodule.Loader)
	if !ok {
		t.Fatal("images module must be a Loader")
	}
	if err := loader.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if sum := cat.Summary(context.Background()); !sum.Loaded || sum.Images != 6 || sum.Source != "csv" {
		t.Fatalf("summary = %+v", sum)
	}

	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)
	rr := httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/images/nights", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"20200102"`) {
		t.Fatalf("code=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestModule_LoadError(t *testing.T) {
	t.Setenv("ALLSKY_CATALOGUE_PATH", t.TempDir()+"/missing.csv")
	t.Setenv("ALLSKY_IMAGES_TIMEZONE", "UTC")

	m := New(deps(), modkit.WithPrefix("/img"))
	if got := m.(*Module).Prefix(); got != "/img" {
		t.Fatalf("prefix = %q", got)
	}
	if err := m.(pmodule.Loader).Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
}

func TestModule_UnconfiguredSourcePanics(t *testing.T) {
	t.Setenv("ALLSKY_CATALOGUE_SOURCE", "pg")
	t.Setenv("ALLSKY_IMAGES_TIMEZONE", "UTC")
	testkit.MustPanic(t, func() { New(deps()) })
}
