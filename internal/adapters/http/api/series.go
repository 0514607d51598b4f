package api

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/internal/exporter"
	"github.com/runeset/elotrace/pkg/logger"
)

// point is one table row on the wire. Smoothed and delta are pointers
// so absent columns marshal as absent keys, not zeroes.
type point struct {
	Date     string   `json:"date"`
	Entity   string   `json:"entity"`
	Rating   float64  `json:"rating"`
	Smoothed *float64 `json:"smoothed,omitempty"`
	Delta    *float64 `json:"delta,omitempty"`
}

type summary struct {
	Entity string  `json:"entity"`
	Basis  string  `json:"basis"`
	Latest float64 `json:"latest"`
	First  float64 `json:"first"`
	Change float64 `json:"change"`
}

type scale struct {
	Type string  `json:"type"`
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Auto bool    `json:"auto"`
}

type warning struct {
	Entity      string   `json:"entity"`
	Kind        string   `json:"kind"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type seriesResponse struct {
	Points    []point   `json:"points"`
	Columns   []string  `json:"columns"`
	Summary   *summary  `json:"summary,omitempty"`
	Scale     scale     `json:"scale"`
	Warnings  []warning `json:"warnings,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (*seriesResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

type summaryResponse struct {
	Summary   *summary  `json:"summary,omitempty"`
	Warnings  []warning `json:"warnings,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (*summaryResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

// handleSeries runs the full pipeline and returns the plotted table.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	q, fields := s.parseSeriesQuery(r)
	if len(fields) > 0 {
		renderFieldErrors(w, r, fields)
		return
	}

	res, err := s.deps.Series(r.Context(), q)
	if err != nil {
		s.log.Warn(r.Context(), "series request failed",
			logger.String("team", q.Entity), logger.Error(err))
		renderServiceError(w, r, err)
		return
	}

	_ = render.Render(w, r, &seriesResponse{
		Points:    points(res.Table),
		Columns:   exporter.Headers(res.Table),
		Summary:   summaryOf(res.Summary),
		Scale:     scaleOf(res.Scale),
		Warnings:  warnings(res.Errors),
		FetchedAt: res.FetchedAt,
	})
}

// handleSummary returns only the latest/first/change digest.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q, fields := s.parseSeriesQuery(r)
	if len(fields) > 0 {
		renderFieldErrors(w, r, fields)
		return
	}

	res, err := s.deps.Series(r.Context(), q)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	_ = render.Render(w, r, &summaryResponse{
		Summary:   summaryOf(res.Summary),
		Warnings:  warnings(res.Errors),
		FetchedAt: res.FetchedAt,
	})
}

func points(t model.Table) []point {
	out := make([]point, 0, t.Len())
	for _, row := range t.Rows {
		p := point{
			Date:   model.FormatDate(row.Date),
			Entity: row.Entity,
			Rating: row.Rating,
		}
		if t.HasSmoothed {
			v := row.Smoothed
			p.Smoothed = &v
		}
		if t.HasDelta {
			v := row.Delta
			p.Delta = &v
		}
		out = append(out, p)
	}
	return out
}

func summaryOf(m *model.Summary) *summary {
	if m == nil {
		return nil
	}
	return &summary{
		Entity: m.Entity,
		Basis:  m.Basis,
		Latest: m.Latest,
		First:  m.First,
		Change: m.Change,
	}
}

func scaleOf(m model.Scale) scale {
	return scale{Type: m.Type, Min: m.Min, Max: m.Max, Auto: m.Auto}
}

func warnings(errs []model.EntityError) []warning {
	if len(errs) == 0 {
		return nil
	}
	out := make([]warning, 0, len(errs))
	for _, e := range errs {
		out = append(out, warning{
			Entity:      e.Entity,
			Kind:        string(e.Kind),
			Message:     e.Message,
			Suggestions: e.Suggestions,
		})
	}
	return out
}
