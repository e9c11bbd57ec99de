// Package module wires images into the API using modkit
package module

import (
	"context"
	"fmt"
	"time"

	modkit "allsky/internal/modkit"
	"allsky/internal/modkit/httpkit"
	"allsky/internal/platform/logger"
	str "allsky/internal/platform/strings"
	imageshttp "allsky/internal/services/api/images/http"
	imagesrepo "allsky/internal/services/api/images/repo"
	imagessvc "allsky/internal/services/api/images/service"
)

// Module implements the images module
type Module struct {
	b       modkit.Built
	svc     *imagessvc.Svc
	log     *logger.Logger
	timeout time.Duration
}

// New constructs the images module. The catalogue source is chosen by
// ALLSKY_CATALOGUE_SOURCE and read later by Load
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("images"), modkit.WithPrefix("/images")}, opts...)...)

	src, err := imagesrepo.FromConfig(deps.Cfg.Prefix("ALLSKY_CATALOGUE_"), deps.PG, deps.Lite)
	if err != nil {
		panic(fmt.Errorf("images: %w", err))
	}
	imgCfg := deps.Cfg.Prefix("ALLSKY_IMAGES_")
	cfg := imagessvc.ConfigFromEnv(imgCfg)

	log := deps.Log.With().Str("module", b.Name).Logger()
	log.Info().Str("source", src.Name()).Stringer("config", cfg).Msg("images module configured")

	return &Module{
		b:       b,
		svc:     imagessvc.New(src, imagesrepo.NewClickhouse(deps.CH), cfg),
		log:     &log,
		timeout: imgCfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

// Load reads the catalogue; call once before serving
func (m *Module) Load(ctx context.Context) error {
	if err := m.svc.Load(ctx); err != nil {
		m.log.Error().Err(err).Msg("catalogue load failed")
		return err
	}
	return nil
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		imageshttp.Register(rr, m.svc, imageshttp.WithTimeout(m.timeout))
	})
}

// Ports exposes the catalogue summary to other modules
func (m *Module) Ports() any { return Ports{Catalogue: m.svc} }

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }
