// Package series assembles per-entity step points into one ordered table
// and derives window filters and summaries from it.
package series

import (
	"sort"
	"time"

	"github.com/runeset/elotrace/internal/domain/model"
)

// Build concatenates step point lists into a single table sorted by
// entity, then date. The sort is stable so a same-date jump pair keeps
// its emission order (hold point first, new rating second).
func Build(lists ...[]model.StepPoint) model.Table {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	rows := make([]model.Row, 0, n)
	for _, l := range lists {
		for _, p := range l {
			rows = append(rows, model.Row{Entity: p.Entity, Date: p.Date, Rating: p.Rating})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Entity != rows[j].Entity {
			return rows[i].Entity < rows[j].Entity
		}
		return rows[i].Date.Before(rows[j].Date)
	})
	return model.Table{Rows: rows}
}

// FilterRange returns a copy of the table keeping rows with
// from <= date < to+24h, so the end date covers its whole calendar day.
// A zero bound leaves that side open. An entity whose rows all fall
// outside the range simply disappears from the result.
func FilterRange(t model.Table, from, to time.Time) model.Table {
	if from.IsZero() && to.IsZero() {
		return t.Clone()
	}
	var cutoff time.Time
	if !to.IsZero() {
		cutoff = to.Add(24 * time.Hour)
	}
	out := model.Table{
		Rows:        make([]model.Row, 0, len(t.Rows)),
		HasSmoothed: t.HasSmoothed,
		HasDelta:    t.HasDelta,
	}
	for i := range t.Rows {
		d := t.Rows[i].Date
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !cutoff.IsZero() && !d.Before(cutoff) {
			continue
		}
		out.Rows = append(out.Rows, t.Rows[i])
	}
	return out
}

// Summarize reports the latest value, the first value and their
// difference for one entity, using the smoothed column when the table
// carries one and the raw rating otherwise. ok is false when the
// entity has no rows.
func Summarize(t model.Table, entity string) (s model.Summary, ok bool) {
	rows := t.EntityRows(entity)
	if len(rows) == 0 {
		return model.Summary{}, false
	}
	basis := func(r model.Row) float64 {
		if t.HasSmoothed {
			return r.Smoothed
		}
		return r.Rating
	}
	first := basis(rows[0])
	latest := basis(rows[len(rows)-1])
	b := model.BasisRating
	if t.HasSmoothed {
		b = model.BasisSmoothed
	}
	return model.Summary{
		Entity: entity,
		Basis:  b,
		Latest: latest,
		First:  first,
		Change: latest - first,
	}, true
}
