// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"allsky/internal/core/version"
	"allsky/internal/modkit/httpkit"
	"allsky/internal/services/api/images/domain"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Backend is one optional store seam checked by ready. Seam may be nil
type Backend struct {
	Name string
	Seam any
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Backends    []Backend
	Catalogue   domain.CataloguePort
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d, now: time.Now}

	httpkit.Get(r, "/health", h.health)
	httpkit.GetResponse(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

//
// Swagger DTOs and route docs
//

// HealthResponse is the health payload
// swagger:model
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"allsky-api"`
	Started string `json:"started"  example:"2025-09-03T13:00:00Z"`
	Now     string `json:"now"      example:"2025-09-03T13:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"` // ok fail skipped unknown
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status    string          `json:"status" example:"ok"` // ok degraded fail
	Checks    []ReadyCheck    `json:"checks"`
	Catalogue *domain.Summary `json:"catalogue,omitempty"`
	Now       string          `json:"now"    example:"2025-09-03T13:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name      string          `json:"name"    example:"allsky-api"`
	Started   string          `json:"started" example:"2025-09-03T13:00:00Z"`
	Uptime    int64           `json:"uptime"  example:"300"`
	Catalogue *domain.Summary `json:"catalogue,omitempty"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     h.now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness probe with dependency and catalogue checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok or degraded"
// @Failure 503 {object} ReadyResponse "fail"
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) httpkit.Response {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	check := func(name string, c any) ReadyCheck {
		if c == nil {
			return ReadyCheck{Name: name, Status: "skipped"}
		}
		if p, ok := c.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
			}
			return ReadyCheck{Name: name, Status: "ok"}
		}
		return ReadyCheck{Name: name, Status: "unknown"}
	}

	out := ReadyResponse{Status: "ok", Now: h.now().UTC().Format(time.RFC3339)}
	for _, b := range h.deps.Backends {
		c := check(b.Name, b.Seam)
		out.Checks = append(out.Checks, c)
		switch c.Status {
		case "fail":
			out.Status = "fail"
		case "unknown":
			if out.Status == "ok" {
				out.Status = "degraded"
			}
		}
	}

	if h.deps.Catalogue != nil {
		sum := h.deps.Catalogue.Summary(ctx)
		out.Catalogue = &sum
		c := ReadyCheck{Name: "catalogue", Status: "ok"}
		if !sum.Loaded {
			c.Status, c.Error = "fail", "catalogue not loaded"
			out.Status = "fail"
		}
		out.Checks = append(out.Checks, c)
	}

	if out.Status == "fail" {
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: out}
	}
	return httpkit.OK(out)
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// swagger:route GET /meta/service Meta metaService
// @Summary Service info, uptime and catalogue summary
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /meta/service [get]
func (h *handlers) service(r *http.Request) (any, error) {
	out := ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(h.now().Sub(h.deps.StartedAt) / time.Second),
	}
	if h.deps.Catalogue != nil {
		sum := h.deps.Catalogue.Summary(r.Context())
		out.Catalogue = &sum
	}
	return out, nil
}
