// Package service contains image selection workflows
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"allsky/internal/core/archive"
	"allsky/internal/core/catalogue"
	"allsky/internal/core/selection"
	"allsky/internal/core/sidereal"
	"allsky/internal/platform/config"
	perr "allsky/internal/platform/errors"
	"allsky/internal/platform/logger"
	"allsky/internal/platform/net/http/bind"
	"allsky/internal/services/api/images/domain"
	"allsky/internal/services/api/images/repo"
)

// Service defines the images service contract
type Service interface {
	domain.ServicePort
	domain.CataloguePort
}

// Config holds the image archive settings
type Config struct {
	// BaseDir is the archive root catalogue directories are relative to
	BaseDir string
	// Location is the observatory time zone for sidereal_datetime input
	Location *time.Location
	// TimeLimit is the default nearest match tolerance in sidereal hours
	TimeLimit float64
}

// ConfigFromEnv reads BASE_DIR, TIMEZONE and TIME_LIMIT under c
func ConfigFromEnv(c config.Conf) Config {
	return Config{
		BaseDir:   c.MayString("BASE_DIR", "."),
		Location:  c.MayLocation("TIMEZONE", "Australia/Adelaide"),
		TimeLimit: c.MayFloat64("TIME_LIMIT", selection.DefaultTimeLimit),
	}
}

// Svc implements the images service
type Svc struct {
	src   repo.Source
	audit repo.Auditor
	cfg   Config

	cat atomic.Pointer[catalogue.Catalogue]
	now func() time.Time
}

// New constructs an images service. The catalogue stays unavailable until Load succeeds
func New(src repo.Source, audit repo.Auditor, cfg Config) *Svc {
	if src == nil {
		panic("images.Service requires a non nil catalogue Source")
	}
	if audit == nil {
		audit = repo.Discard{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = selection.DefaultTimeLimit
	}
	return &Svc{src: src, audit: audit, cfg: cfg, now: time.Now}
}

// Load reads the catalogue once and publishes it to readers
func (s *Svc) Load(ctx context.Context) error {
	start := s.now()
	recs, err := s.src.Load(ctx)
	if err != nil {
		return err
	}
	cat, err := catalogue.New(recs)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeCatalogue, "build catalogue from %s", s.src.Name())
	}
	s.cat.Store(cat)

	if v, ok := s.audit.(repo.Verifier); ok {
		if err := v.Verify(ctx); err != nil {
			logger.C(ctx).Warn().Err(err).Msg("download audit unavailable")
		}
	}

	logger.C(ctx).Info().
		Str("source", s.src.Name()).
		Int("images", cat.Len()).
		Int("nights", len(cat.Nights())).
		Dur("took", s.now().Sub(start)).
		Msg("catalogue loaded")
	return nil
}

func (s *Svc) catalogue() (*catalogue.Catalogue, error) {
	c := s.cat.Load()
	if c == nil {
		return nil, perr.Unavailablef("catalogue not loaded")
	}
	return c, nil
}

// Select returns the identifiers and total size of a selection
func (s *Svc) Select(ctx context.Context, in domain.SelectInput) (domain.Selection, error) {
	req, res, err := s.run(in)
	if err != nil {
		return domain.Selection{}, err
	}
	s.record(ctx, repo.KindSelect, req, res)
	return domain.Selection{
		Images:        res.Identifiers,
		Count:         len(res.Identifiers),
		TotalSizeMB:   res.TotalMB,
		SiderealStart: req.SiderealStart,
		SiderealEnd:   req.SiderealEnd,
	}, nil
}

// Size returns only the total size of a selection
func (s *Svc) Size(ctx context.Context, in domain.SelectInput) (domain.SizeEstimate, error) {
	req, res, err := s.run(in)
	if err != nil {
		return domain.SizeEstimate{}, err
	}
	s.record(ctx, repo.KindSize, req, res)
	return domain.SizeEstimate{TotalSizeMB: res.TotalMB, Count: len(res.Identifiers)}, nil
}

// Nights returns per night image counts, oldest first
func (s *Svc) Nights(_ context.Context) ([]domain.NightCount, error) {
	cat, err := s.catalogue()
	if err != nil {
		return nil, err
	}
	nights := cat.Nights()
	out := make([]domain.NightCount, 0, len(nights))
	for _, n := range nights {
		out = append(out, domain.NightCount{NightDate: n.NightDate.Format(catalogue.NightLayout), Images: n.Images})
	}
	return out, nil
}

// Sidereal converts a local observatory time to local sidereal time
func (s *Svc) Sidereal(_ context.Context, at string) (domain.SiderealReading, error) {
	t, err := time.ParseInLocation(bind.MinuteLayout, at, s.cfg.Location)
	if err != nil {
		return domain.SiderealReading{}, invalid("at", "at must be a local time formatted YYYY-MM-DDTHH:MM")
	}
	return domain.SiderealReading{
		Local:         t.Format(time.RFC3339),
		UTC:           t.UTC().Format(time.RFC3339),
		SiderealHours: sidereal.Local(t),
	}, nil
}

// PrepareDownload selects images and checks they are all on disk
func (s *Svc) PrepareDownload(ctx context.Context, in domain.SelectInput) (domain.Bundle, error) {
	req, res, err := s.run(in)
	if err != nil {
		return domain.Bundle{}, err
	}
	if err := s.check(ctx, res.Identifiers); err != nil {
		return domain.Bundle{}, err
	}
	s.record(ctx, repo.KindDownload, req, res)
	return domain.Bundle{Filename: "images.zip", Images: res.Identifiers, Bytes: res.TotalBytes}, nil
}

// PrepareNight bundles every image of one night
func (s *Svc) PrepareNight(ctx context.Context, date string) (domain.Bundle, error) {
	cat, err := s.catalogue()
	if err != nil {
		return domain.Bundle{}, err
	}
	night, err := time.Parse(catalogue.NightLayout, date)
	if err != nil {
		return domain.Bundle{}, invalid("date", "date must be a night formatted YYYYMMDD")
	}
	recs := cat.Night(night)
	if len(recs) == 0 {
		return domain.Bundle{}, perr.WithField(perr.NotFoundf("no images for night %s", date), "date")
	}

	b := domain.Bundle{Filename: date + "_images.zip", Images: make([]string, 0, len(recs))}
	for _, r := range recs {
		b.Images = append(b.Images, r.Directory)
		b.Bytes += r.FilesizeBytes
	}
	if err := s.check(ctx, b.Images); err != nil {
		return domain.Bundle{}, err
	}

	s.record(ctx, repo.KindNight, selection.Request{Start: night, End: night}, selection.Result{
		Identifiers: b.Images,
		TotalBytes:  b.Bytes,
		TotalMB:     float64(b.Bytes) / 1e6,
	})
	return b, nil
}

// WriteBundle streams the bundle as a zip
func (s *Svc) WriteBundle(ctx context.Context, w io.Writer, b domain.Bundle) error {
	st, err := archive.Write(ctx, w, s.cfg.BaseDir, b.Images)
	log := logger.C(ctx)
	if err != nil {
		log.Error().Err(err).Str("filename", b.Filename).Int("written", st.Files).Msg("archive aborted")
		return err
	}
	log.Info().Str("filename", b.Filename).Int("files", st.Files).Int64("bytes", st.Bytes).Msg("archive sent")
	return nil
}

// Summary describes the loaded catalogue
func (s *Svc) Summary(_ context.Context) domain.Summary {
	out := domain.Summary{Source: s.src.Name()}
	cat := s.cat.Load()
	if cat == nil {
		return out
	}
	out.Loaded = true
	out.Images = cat.Len()
	out.Nights = len(cat.Nights())
	if first, last, ok := cat.Span(); ok {
		out.FirstNight = first.Format(catalogue.NightLayout)
		out.LastNight = last.Format(catalogue.NightLayout)
	}
	return out
}

func (s *Svc) run(in domain.SelectInput) (selection.Request, selection.Result, error) {
	cat, err := s.catalogue()
	if err != nil {
		return selection.Request{}, selection.Result{}, err
	}
	req, err := s.request(in)
	if err != nil {
		return selection.Request{}, selection.Result{}, err
	}
	return req, selection.Select(cat.Records(), req), nil
}

// request turns wire input into an engine request
func (s *Svc) request(in domain.SelectInput) (selection.Request, error) {
	var req selection.Request

	start, err := time.Parse(bind.DateLayout, in.StartDate)
	if err != nil {
		return req, invalid("start_date", "start_date must be a date formatted YYYY-MM-DD")
	}
	end, err := time.Parse(bind.DateLayout, in.EndDate)
	if err != nil {
		return req, invalid("end_date", "end_date must be a date formatted YYYY-MM-DD")
	}
	req.Start, req.End = start, end

	switch {
	case in.SiderealDatetime != "" && in.SiderealStart != nil:
		return req, invalid("sidereal_start", "set either sidereal_datetime or sidereal_start, not both")
	case in.SiderealStart != nil:
		req.SiderealStart = *in.SiderealStart
	case in.SiderealDatetime != "":
		at, err := time.ParseInLocation(bind.MinuteLayout, in.SiderealDatetime, s.cfg.Location)
		if err != nil {
			return req, invalid("sidereal_datetime", "sidereal_datetime must be a local time formatted YYYY-MM-DDTHH:MM")
		}
		req.SiderealStart = sidereal.Local(at)
	default:
		return req, invalid("sidereal_start", "one of sidereal_datetime or sidereal_start is required")
	}

	if h := req.SiderealStart; h < 0 || h >= 24 {
		return req, invalid("sidereal_start", "sidereal_start must be a sidereal hour in [0, 24)")
	}
	if e := in.SiderealEnd; e != nil {
		if *e < 0 || *e >= 24 {
			return req, invalid("sidereal_end", "sidereal_end must be a sidereal hour in [0, 24)")
		}
		v := *e
		req.SiderealEnd = &v
	}

	req.TimeLimit = in.TimeLimit
	if req.TimeLimit <= 0 {
		req.TimeLimit = s.cfg.TimeLimit
	}
	req.ClearOnly = in.LimitClearImages
	return req, nil
}

func (s *Svc) check(ctx context.Context, dirs []string) error {
	err := archive.Check(s.cfg.BaseDir, dirs)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, archive.ErrMissing):
		logger.C(ctx).Warn().Err(err).Str("base_dir", s.cfg.BaseDir).Msg("selected image missing")
		return perr.Wrap(err, perr.ErrorCodeImageMissing, "a selected image is missing from the archive")
	case errors.Is(err, archive.ErrUnsafePath):
		return perr.Wrap(err, perr.ErrorCodeCatalogue, "catalogue entry escapes the archive root")
	}
	return perr.Wrap(err, perr.ErrorCodeUnknown, "check archive files")
}

// record writes an audit row; failures are logged and never reach the caller
func (s *Svc) record(ctx context.Context, kind string, req selection.Request, res selection.Result) {
	d := repo.Download{
		RequestedAt:   s.now(),
		Kind:          kind,
		StartDate:     req.Start,
		EndDate:       req.End,
		SiderealStart: req.SiderealStart,
		SiderealEnd:   req.SiderealEnd,
		ClearOnly:     req.ClearOnly,
		Images:        len(res.Identifiers),
		TotalMB:       res.TotalMB,
	}
	if err := s.audit.Record(ctx, d); err != nil {
		logger.C(ctx).Warn().Err(err).Str("kind", kind).Msg("download audit failed")
	}
}

func invalid(field, format string, a ...any) error {
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, format, a...), field)
}

var _ Service = (*Svc)(nil)

// String is used in logs
func (c Config) String() string {
	return fmt.Sprintf("base_dir=%s tz=%s time_limit=%g", c.BaseDir, c.Location, c.TimeLimit)
}
