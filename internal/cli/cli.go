// Package cli implements allskyctl, offline access to the catalogue
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"allsky/internal/core/version"
	"allsky/internal/platform/config"
	"allsky/internal/platform/logger"
	"allsky/internal/platform/store"
	"allsky/internal/services/api/images/repo"
	"allsky/internal/services/api/images/service"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Root carries the persistent flags shared by every command
type Root struct {
	source   string
	path     string
	table    string
	baseDir  string
	timezone string

	// openStore is a seam for tests
	openStore func(ctx context.Context, cfg store.Config) (*store.Store, error)
}

// NewRootCmd creates the allskyctl command tree. Flag defaults come from the
// same ALLSKY_CATALOGUE_* and ALLSKY_IMAGES_* variables the server reads
func NewRootCmd() *cobra.Command {
	cat := config.New().Prefix("ALLSKY_CATALOGUE_")
	img := config.New().Prefix("ALLSKY_IMAGES_")

	root := &Root{
		openStore: func(ctx context.Context, cfg store.Config) (*store.Store, error) {
			return store.Open(ctx, cfg, store.WithLogger(*logger.Get()))
		},
	}

	rootCmd := &cobra.Command{
		Use:   "allskyctl",
		Short: "Select and package sky camera images by night and sidereal time",
		Long: `allskyctl reads the image catalogue directly (CSV, Postgres or SQLite)
and runs the same selection the API serves.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&root.source, "source", cat.MayString("SOURCE", repo.SourceCSV), "catalogue source: csv | pg | sqlite")
	pf.StringVar(&root.path, "catalogue", cat.MayString("PATH", "image_catalogue.csv"), "catalogue CSV path when --source=csv")
	pf.StringVar(&root.table, "table", cat.MayString("TABLE", "images"), "catalogue table when --source=pg|sqlite")
	pf.StringVar(&root.baseDir, "base-dir", img.MayString("BASE_DIR", "."), "archive root image directories are relative to")
	pf.StringVar(&root.timezone, "tz", img.MayString("TIMEZONE", "Australia/Adelaide"), "observatory time zone for --at")

	rootCmd.AddCommand(newSelectCmd(root))
	rootCmd.AddCommand(newNightsCmd(root))
	rootCmd.AddCommand(newSiderealCmd(root))
	rootCmd.AddCommand(newArchiveCmd(root))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// service loads the catalogue and returns a ready service plus a closer
func (r *Root) service(ctx context.Context) (*service.Svc, func(), error) {
	loc, err := time.LoadLocation(r.timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("--tz: %w", err)
	}
	cfg := service.Config{BaseDir: r.baseDir, Location: loc}

	var (
		src  repo.Source
		done  = func() {}
	)
	switch r.source {
	case repo.SourceCSV:
		src = repo.CSVFile(r.path)
	case repo.SourcePG, repo.SourceSQLite:
		info := version.Info()
		scfg := store.ConfigFromEnv(config.New(), "allskyctl", info.Version)
		scfg.CH.Enabled = false
		st, err := r.openStore(ctx, scfg)
		if err != nil {
			return nil, nil, err
		}
		done = func() { _ = st.Close(context.Background()) }

		db := st.PG
		if r.source == repo.SourceSQLite {
			db = st.Lite
		}
		if db == nil {
			done()
			return nil, nil, fmt.Errorf("catalogue source %s is not configured", r.source)
		}
		binder, err := repo.NewSQL(r.table)
		if err != nil {
			done()
			return nil, nil, err
		}
		src = repo.SQLSource(r.source, db, binder)
	default:
		return nil, nil, fmt.Errorf("--source must be csv, pg or sqlite, got %q", r.source)
	}

	svc := service.New(src, repo.Discard{}, cfg)
	if err := svc.Load(ctx); err != nil {
		done()
		return nil, nil, err
	}
	return svc, done, nil
}

// printer formats counts and sizes with digit grouping
func printer() *message.Printer { return message.NewPrinter(language.English) }

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			bi := version.Info()
			cmd.Printf("allskyctl %s (%s, %s)\n", bi.Version, bi.Commit, bi.Date)
		},
	}
}

// Execute runs the command tree and exits non zero on failure
func Execute(ctx context.Context) {
	version.Service("allskyctl")
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
