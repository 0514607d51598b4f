// Package transform derives the optional smoothed and delta columns of
// a series table. The transform is pure: the input table is copied,
// raw ratings are never rewritten, and rerunning with identical options
// reproduces the output exactly.
package transform

import (
	"github.com/runeset/elotrace/internal/domain/model"
)

// Apply returns a copy of the table with derived columns computed per
// entity, smoothing first, then delta:
//
//  1. Smoothing fills the Smoothed column with a trailing moving
//     average over the most recent window entries of that entity.
//     Early points average over however many entries exist, so the
//     first point's smoothed value equals its raw value. With the
//     window off, Smoothed mirrors the raw rating.
//  2. Delta subtracts the entity's first basis value from every basis
//     value, where the basis is the smoothed column when smoothing is
//     on and the raw rating otherwise. The first point's delta is
//     exactly zero.
//
// The table's HasSmoothed and HasDelta flags reflect the options used.
func Apply(t model.Table, opts ...Option) model.Table {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := t.Clone()
	out.HasSmoothed = cfg.window > 0
	out.HasDelta = cfg.delta

	// Rows are sorted by entity then date, so entities form contiguous runs.
	for start := 0; start < len(out.Rows); {
		end := start + 1
		for end < len(out.Rows) && out.Rows[end].Entity == out.Rows[start].Entity {
			end++
		}
		applyEntity(out.Rows[start:end], cfg)
		start = end
	}
	return out
}

func applyEntity(rows []model.Row, cfg config) {
	if cfg.window > 0 {
		var sum float64
		for i := range rows {
			sum += rows[i].Rating
			if i >= cfg.window {
				sum -= rows[i-cfg.window].Rating
			}
			n := i + 1
			if n > cfg.window {
				n = cfg.window
			}
			rows[i].Smoothed = sum / float64(n)
		}
	} else {
		for i := range rows {
			rows[i].Smoothed = rows[i].Rating
		}
	}

	if !cfg.delta {
		return
	}
	basis := func(r model.Row) float64 {
		if cfg.window > 0 {
			return r.Smoothed
		}
		return r.Rating
	}
	first := basis(rows[0])
	for i := range rows {
		rows[i].Delta = basis(rows[i]) - first
	}
}
