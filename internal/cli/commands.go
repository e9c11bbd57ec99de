package cli

import (
	"fmt"
	"os"
	"time"

	"allsky/internal/services/api/images/domain"
	"allsky/internal/services/api/images/repo"
	"allsky/internal/services/api/images/service"

	"github.com/spf13/cobra"
)

// selectFlags mirror domain.SelectInput
type selectFlags struct {
	start, end    string
	at            string
	siderealStart float64
	siderealEnd   float64
	timeLimit     float64
	clear         bool
}

func (f *selectFlags) bind(cmd *cobra.Command, required bool) {
	fl := cmd.Flags()
	fl.StringVar(&f.start, "start", "", "first night YYYY-MM-DD (required)")
	fl.StringVar(&f.end, "end", "", "last night YYYY-MM-DD, inclusive (required)")
	fl.StringVar(&f.at, "at", "", "local time YYYY-MM-DDTHH:MM whose sidereal time is the target")
	fl.Float64Var(&f.siderealStart, "sidereal-start", 0, "target sidereal hour, instead of --at")
	fl.Float64Var(&f.siderealEnd, "sidereal-end", 0, "end of a sidereal window, switches to range matching")
	fl.Float64Var(&f.timeLimit, "time-limit", 0, "nearest match tolerance in sidereal hours (default 0.5)")
	fl.BoolVar(&f.clear, "clear", false, "only images in the clear sky size band")
	if required {
		_ = cmd.MarkFlagRequired("start")
		_ = cmd.MarkFlagRequired("end")
	}
	cmd.MarkFlagsMutuallyExclusive("at", "sidereal-start")
}

func (f *selectFlags) input(cmd *cobra.Command) domain.SelectInput {
	in := domain.SelectInput{
		StartDate:        f.start,
		EndDate:          f.end,
		SiderealDatetime: f.at,
		TimeLimit:        f.timeLimit,
		LimitClearImages: f.clear,
	}
	if cmd.Flags().Changed("sidereal-start") {
		v := f.siderealStart
		in.SiderealStart = &v
	}
	if cmd.Flags().Changed("sidereal-end") {
		v := f.siderealEnd
		in.SiderealEnd = &v
	}
	return in
}

func newSelectCmd(root *Root) *cobra.Command {
	var (
		f        selectFlags
		sizeOnly bool
	)
	cmd := &cobra.Command{
		Use:   "select",
		Short: "List the images matching a night range and sidereal time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, done, err := root.service(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			p := printer()
			out := cmd.OutOrStdout()
			if sizeOnly {
				est, err := svc.Size(cmd.Context(), f.input(cmd))
				if err != nil {
					return err
				}
				_, err = p.Fprintf(out, "%d images, %.2f MB\n", est.Count, est.TotalSizeMB)
				return err
			}

			sel, err := svc.Select(cmd.Context(), f.input(cmd))
			if err != nil {
				return err
			}
			for _, id := range sel.Images {
				fmt.Fprintln(out, id)
			}
			_, err = p.Fprintf(cmd.ErrOrStderr(), "%d images, %.2f MB, sidereal %.4f h\n", sel.Count, sel.TotalSizeMB, sel.SiderealStart)
			return err
		},
	}
	f.bind(cmd, true)
	cmd.Flags().BoolVar(&sizeOnly, "size-only", false, "print only the count and total size")
	return cmd
}

func newNightsCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "nights",
		Short: "Image count per observing night",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, done, err := root.service(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			nights, err := svc.Nights(cmd.Context())
			if err != nil {
				return err
			}
			p := printer()
			total := 0
			for _, n := range nights {
				total += n.Images
				if _, err := p.Fprintf(cmd.OutOrStdout(), "%s  %6d\n", n.NightDate, n.Images); err != nil {
					return err
				}
			}
			_, err = p.Fprintf(cmd.ErrOrStderr(), "%d nights, %d images\n", len(nights), total)
			return err
		},
	}
}

func newSiderealCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "sidereal <YYYY-MM-DDTHH:MM>",
		Short: "Local sidereal time at the observatory for a local time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(root.timezone)
			if err != nil {
				return fmt.Errorf("--tz: %w", err)
			}
			// conversion only, the catalogue is never loaded
			svc := service.New(repo.CSVFile(root.path), repo.Discard{}, service.Config{Location: loc})
			r, err := svc.Sidereal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s  utc %s  lst %.4f h\n", r.Local, r.UTC, r.SiderealHours)
			return err
		},
	}
}

func newArchiveCmd(root *Root) *cobra.Command {
	var (
		f      selectFlags
		night  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Write the selected images, or one whole night, to a zip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, done, err := root.service(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			ctx := cmd.Context()
			var b domain.Bundle
			if night != "" {
				b, err = svc.PrepareNight(ctx, night)
			} else {
				if f.start == "" || f.end == "" {
					return fmt.Errorf("--start and --end are required without --night")
				}
				b, err = svc.PrepareDownload(ctx, f.input(cmd))
			}
			if err != nil {
				return err
			}
			if output == "" {
				output = b.Filename
			}

			fh, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := svc.WriteBundle(ctx, fh, b); err != nil {
				_ = fh.Close()
				_ = os.Remove(output)
				return err
			}
			if err := fh.Close(); err != nil {
				return err
			}
			_, err = printer().Fprintf(cmd.ErrOrStderr(), "wrote %s: %d images, %.2f MB\n", output, len(b.Images), float64(b.Bytes)/1e6)
			return err
		},
	}
	f.bind(cmd, false)
	cmd.Flags().StringVar(&night, "night", "", "archive every image of one night YYYYMMDD")
	cmd.Flags().StringVarP(&output, "output", "o", "", "zip path (default images.zip or <night>_images.zip)")
	return cmd
}
