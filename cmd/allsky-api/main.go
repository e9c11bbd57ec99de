// @title         allsky API
// @version       1.0
// @description   Select sky camera images by observing night and sidereal time

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata" // observatory zone without a system zoneinfo

	"allsky/internal/core/version"
	"allsky/internal/modkit/repokit"
	"allsky/internal/platform/config"
	"allsky/internal/platform/logger"
	phttp "allsky/internal/platform/net/http"
	"allsky/internal/platform/store"

	"allsky/internal/services/api"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional, real env wins
	_ = godotenv.Load()

	version.Service("allsky-api")

	root := config.New()
	apiCfg := root.Prefix("ALLSKY_API_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := version.Info()
	st, err := store.Open(ctx, store.ConfigFromEnv(root, info.Service, info.Version), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	// http server (reads ALLSKY_API_ADDR / WRITE_TIMEOUT / SHUTDOWN_GRACE)
	srv := phttp.NewServer(apiCfg)

	err = api.Mount(ctx, srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		Logger:         l,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
	})
	if err != nil {
		l.Panic().Err(err).Msg("api.Mount failed")
	}

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
	l.Info().Msg("bye")
}
