// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	"allsky/internal/core/version"
	modkit "allsky/internal/modkit"
	"allsky/internal/modkit/httpkit"
	str "allsky/internal/platform/strings"
	"allsky/internal/services/api/images/domain"

	metahttp "allsky/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	b    modkit.Built
	deps metahttp.Deps
}

// New constructs a meta module. Pass the images catalogue port with
// modkit.WithPorts to report it in readiness
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	cat, _ := b.Ports.(domain.CataloguePort)

	backends := []metahttp.Backend{
		{Name: "pg", Seam: deps.PG},
		{Name: "sqlite", Seam: deps.Lite},
		{Name: "ch", Seam: deps.CH},
	}

	return &Module{
		b: b,
		deps: metahttp.Deps{
			ServiceName: version.Info().Service,
			StartedAt:   time.Now(),
			Backends:    backends,
			Catalogue:   cat,
		},
	}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
