// Package api declares the JSON API: route registration, parameter
// parsing and validation, and the response shapes consumed by the
// dashboard and by export tooling.
package api

import (
	"context"
	"io"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/pkg/logger"
)

// SeriesProvider runs the series pipeline for a query.
type SeriesProvider interface {
	Series(ctx context.Context, q model.Query) (*model.Result, error)
}

// Exporter streams a query's table in a download format.
type Exporter interface {
	ExportCSV(ctx context.Context, q model.Query, w io.Writer) error
	ExportXLSX(ctx context.Context, q model.Query, w io.Writer) error
}

// StatsProvider exposes component statistics for monitoring.
type StatsProvider interface {
	GetStats(ctx context.Context) map[string]interface{}
}

// AliasProvider resolves a name to its known spelling group.
type AliasProvider interface {
	Aliases(name string) []string
}

// Dependencies required by the HTTP handlers. An interface bundle
// keeps the handler layer loosely coupled to the service package.
type Dependencies interface {
	SeriesProvider
	Exporter
	StatsProvider
	AliasProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps Dependencies
	log  logger.Logger

	maxCompare int
	maxWindow  int
}

// NewServer creates the API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:       deps,
		log:        logger.Get().Named("api"),
		maxCompare: 3,
		maxWindow:  50,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register attaches all HTTP routes to the router.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/series", MetricsMiddleware(s.handleSeries, "series"))
		r.Get("/summary", MetricsMiddleware(s.handleSummary, "summary"))
		r.Get("/export", MetricsMiddleware(s.handleExport, "export"))
		r.Get("/aliases", MetricsMiddleware(s.handleAliases, "aliases"))
	})
	r.Get("/stats", MetricsMiddleware(s.handleStats, "stats"))
	r.Get("/healthz", MetricsMiddleware(s.handleHealth, "healthz"))
}
