// Package http provides http transport for images
package http

import (
	"io"
	stdhttp "net/http"
	"time"

	"allsky/internal/modkit/httpkit"
	"allsky/internal/platform/net/middleware"
	"allsky/internal/services/api/images/domain"
)

// Option tunes Register
type Option func(*handlers)

// WithTimeout bounds the JSON endpoints. Downloads are never bounded:
// a range selection can stream for longer than any fixed deadline
func WithTimeout(d time.Duration) Option {
	return func(h *handlers) { h.timeout = d }
}

// Register mounts images endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort, opts ...Option) {
	h := &handlers{svc: s}
	for _, o := range opts {
		o(h)
	}

	r.Group(func(g httpkit.Router) {
		if h.timeout > 0 {
			g.Use(middleware.Timeout(h.timeout))
		}
		httpkit.PostJSON[domain.SelectInput](g, "/select", h.selectImages)
		httpkit.PostJSON[domain.SelectInput](g, "/size", h.size)
		httpkit.Get(g, "/nights", h.nights)
		httpkit.Get(g, "/sidereal", h.sidereal)
	})

	httpkit.PostResponse[domain.SelectInput](r, "/download", h.download)
	httpkit.GetResponse(r, "/nights/{date}/download", h.nightDownload)
}

type handlers struct {
	svc     domain.ServicePort
	timeout time.Duration
}

// swagger:route POST /images/select Images imagesSelect
// @Summary Select images by night and sidereal time
// @Tags Images
// @Accept json
// @Produce json
// @Param payload body domain.SelectInput true "Selection"
// @Success 200 {object} domain.Selection "ok"
// @Router /images/select [post]
func (h *handlers) selectImages(r *stdhttp.Request, in domain.SelectInput) (any, error) {
	return h.svc.Select(r.Context(), in)
}

// swagger:route POST /images/size Images imagesSize
// @Summary Total size of a selection
// @Tags Images
// @Accept json
// @Produce json
// @Param payload body domain.SelectInput true "Selection"
// @Success 200 {object} domain.SizeEstimate "ok"
// @Router /images/size [post]
func (h *handlers) size(r *stdhttp.Request, in domain.SelectInput) (any, error) {
	return h.svc.Size(r.Context(), in)
}

// swagger:route POST /images/download Images imagesDownload
// @Summary Download a selection as images.zip
// @Tags Images
// @Accept json
// @Produce application/zip
// @Param payload body domain.SelectInput true "Selection"
// @Success 200 {file} binary "zip, or domain.SizeEstimate when only_calculate is set"
// @Failure 409 {object} httpkit.Envelope "image missing"
// @Router /images/download [post]
func (h *handlers) download(r *stdhttp.Request, in domain.SelectInput) httpkit.Response {
	if in.OnlyCalculate {
		est, err := h.svc.Size(r.Context(), in)
		if err != nil {
			return httpkit.Error(err)
		}
		return httpkit.OK(est)
	}
	b, err := h.svc.PrepareDownload(r.Context(), in)
	if err != nil {
		return httpkit.Error(err)
	}
	return h.attach(r, b)
}

// swagger:route GET /images/nights Images imagesNights
// @Summary Image count per night
// @Tags Images
// @Produce json
// @Success 200 {array} domain.NightCount "ok"
// @Router /images/nights [get]
func (h *handlers) nights(r *stdhttp.Request) (any, error) {
	return h.svc.Nights(r.Context())
}

// swagger:route GET /images/nights/{date}/download Images imagesNightDownload
// @Summary Download one night as {date}_images.zip
// @Tags Images
// @Produce application/zip
// @Param date path string true "night YYYYMMDD"
// @Success 200 {file} binary "zip"
// @Failure 404 {object} httpkit.Envelope "no images"
// @Router /images/nights/{date}/download [get]
func (h *handlers) nightDownload(r *stdhttp.Request) httpkit.Response {
	b, err := h.svc.PrepareNight(r.Context(), httpkit.URLParam(r, "date"))
	if err != nil {
		return httpkit.Error(err)
	}
	return h.attach(r, b)
}

// swagger:route GET /images/sidereal Images imagesSidereal
// @Summary Local sidereal time at the observatory
// @Tags Images
// @Produce json
// @Param at query string true "local time YYYY-MM-DDTHH:MM"
// @Success 200 {object} domain.SiderealReading "ok"
// @Router /images/sidereal [get]
func (h *handlers) sidereal(r *stdhttp.Request) (any, error) {
	return h.svc.Sidereal(r.Context(), r.URL.Query().Get("at"))
}

func (h *handlers) attach(r *stdhttp.Request, b domain.Bundle) httpkit.Response {
	ctx := r.Context()
	return httpkit.Download(b.Filename, "application/zip", func(w io.Writer) error {
		return h.svc.WriteBundle(ctx, w, b)
	})
}
