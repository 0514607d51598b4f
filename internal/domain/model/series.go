// Package model contains domain models passed between layers.
package model

import (
	"math"
	"time"
)

// Observation is a single dated rating produced by a source adapter.
// Immutable once created; Date is a UTC calendar date (midnight).
type Observation struct {
	Entity string    // club slug or national team name
	Date   time.Time // calendar date the rating was observed
	Rating float64   // Elo rating at that date
}

// IntervalRecord states that an entity held a rating from From until To.
// A zero To means the interval is still open ("current rating").
type IntervalRecord struct {
	Entity string
	From   time.Time
	To     time.Time // zero = open-ended
	Rating float64
}

// Valid reports whether the record satisfies the interval invariants:
// a set From, From <= To when To is present, and a finite rating.
func (r IntervalRecord) Valid() bool {
	if r.From.IsZero() {
		return false
	}
	if !r.To.IsZero() && r.To.Before(r.From) {
		return false
	}
	return !math.IsNaN(r.Rating) && !math.IsInf(r.Rating, 0)
}

// StepPoint is the plot-ready unit emitted by the step expander.
// For a fixed entity, points are ordered by date; a same-date pair
// (d, old) then (d, new) encodes an instantaneous jump.
type StepPoint struct {
	Entity string
	Date   time.Time
	Rating float64
}

// RawSeries is a source adapter's normalized output for one entity.
// Exactly one of Intervals or Obs is populated, depending on the
// source shape.
type RawSeries struct {
	Entity    string
	Kind      SourceKind
	Intervals []IntervalRecord
	Obs       []Observation
}

// Empty reports whether the adapter produced no usable rows.
func (s RawSeries) Empty() bool {
	return len(s.Intervals) == 0 && len(s.Obs) == 0
}

// Rows returns the number of usable rows regardless of shape.
func (s RawSeries) Rows() int {
	if len(s.Intervals) > 0 {
		return len(s.Intervals)
	}
	return len(s.Obs)
}

// Row is one line of the tidy series table: a step point plus the
// derived columns added by the transform stage. Smoothed and Delta
// are meaningful only when the owning table's flags say so.
type Row struct {
	Entity   string
	Date     time.Time
	Rating   float64
	Smoothed float64
	Delta    float64
}

// Table is the ordered series table flowing from aggregation through
// transform to presentation. Rows are sorted by entity, then date,
// with same-key emission order preserved (jump pairs stay intact).
// Stages never mutate a table in place; each returns a fresh one.
type Table struct {
	Rows        []Row
	HasSmoothed bool
	HasDelta    bool
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Entities returns the distinct entities in table order.
func (t Table) Entities() []string {
	seen := make(map[string]bool, 4)
	out := make([]string, 0, 4)
	for i := range t.Rows {
		e := t.Rows[i].Entity
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// EntityRows returns the rows belonging to one entity, in table order.
func (t Table) EntityRows(entity string) []Row {
	var out []Row
	for i := range t.Rows {
		if t.Rows[i].Entity == entity {
			out = append(out, t.Rows[i])
		}
	}
	return out
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := Table{
		Rows:        make([]Row, len(t.Rows)),
		HasSmoothed: t.HasSmoothed,
		HasDelta:    t.HasDelta,
	}
	copy(out.Rows, t.Rows)
	return out
}
