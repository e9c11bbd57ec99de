// Package module defines the minimal contract for a modkit module
package module

import (
	"context"

	phttp "allsky/internal/platform/net/http"
)

// Module is what the api composes: routes, ports for cross wiring and a name.
// It lives apart from modkit so a module can export its own ports type
// without an import cycle
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}

// Loader is implemented by modules that must read data before serving
type Loader interface {
	Load(ctx context.Context) error
}
