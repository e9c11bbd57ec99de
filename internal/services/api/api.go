// Package api provides the HTTP API for the application
package api

import (
	"context"
	"fmt"
	"time"

	"allsky/internal/platform/config"
	"allsky/internal/platform/logger"
	phttp "allsky/internal/platform/net/http"
	"allsky/internal/platform/net/middleware"
	"allsky/internal/platform/store"

	"allsky/internal/modkit"
	"allsky/internal/modkit/httpkit"
	"allsky/internal/modkit/module"
	"allsky/internal/modkit/swaggerkit"

	imagesdomain "allsky/internal/services/api/images/domain"
	imagesmod "allsky/internal/services/api/images/module"
	metamod "allsky/internal/services/api/meta/module"
)

// Options are the API options
type Options struct {
	// Config is the unprefixed root view; modules pick their own prefixes
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount builds the modules, loads the catalogue and mounts everything onto r.
// It fails when the catalogue cannot be read
func Mount(ctx context.Context, r phttp.Router, opt Options) error {
	apiCfg := opt.Config.Prefix("ALLSKY_API_")

	log := logger.Get()
	if opt.Logger != nil {
		log = opt.Logger
	}
	deps := modkit.DepsFromStore(*log, opt.Config, opt.Store)

	// liveness for load balancers, outside the versioned stack
	r.Use(middleware.Heartbeat("/ping"))

	images := imagesmod.New(deps, modkit.WithMiddlewares(
		middleware.Throttle(apiCfg.MayInt("MAX_INFLIGHT", 8), apiCfg.MayDuration("BACKLOG_TIMEOUT", 30*time.Second)),
	))
	catalogue := module.MustPortsOf[imagesdomain.CataloguePort](images)

	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts(catalogue)),
		images,
	}

	for _, m := range mods {
		if l, ok := m.(module.Loader); ok {
			if err := l.Load(ctx); err != nil {
				return fmt.Errorf("load %s: %w", m.Name(), err)
			}
		}
	}

	stack := httpkit.CommonStack(httpkit.StackOptions{
		CORSOrigins: apiCfg.MayCSV("CORS_ORIGINS", nil),
		// 0 keeps downloads unbounded; images bounds its JSON routes itself
		Timeout:     apiCfg.MayDuration("TIMEOUT", 0),
		SlowRequest: apiCfg.MayDuration("SLOW_REQUEST", 2*time.Second),
	})
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	log.Info().Int("modules", len(mods)).Bool("swagger", opt.EnableSwagger).Msg("api mounted")
	return nil
}
