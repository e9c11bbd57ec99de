package domain

import (
	"context"
	"io"
)

// ServicePort is consumed by handlers
type ServicePort interface {
	Select(ctx context.Context, in SelectInput) (Selection, error)
	Size(ctx context.Context, in SelectInput) (SizeEstimate, error)
	Nights(ctx context.Context) ([]NightCount, error)
	Sidereal(ctx context.Context, at string) (SiderealReading, error)

	// PrepareDownload selects and checks every file exists before any byte is sent
	PrepareDownload(ctx context.Context, in SelectInput) (Bundle, error)
	// PrepareNight bundles every image of one night, date as YYYYMMDD
	PrepareNight(ctx context.Context, date string) (Bundle, error)
	WriteBundle(ctx context.Context, w io.Writer, b Bundle) error
}

// CataloguePort is exported to other modules, meta uses it for readiness
type CataloguePort interface {
	Summary(ctx context.Context) Summary
}
