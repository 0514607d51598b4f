// Package step expands normalized source output into plot-ready step points.
package step

import (
	"github.com/runeset/elotrace/internal/domain/model"
)

// FromIntervals expands interval records into step points. Each valid
// record contributes a point at From; a closed record contributes a
// second point at To carrying the same rating, so the line holds the
// old value up to the boundary where the next record takes over.
// Invalid records are skipped. Records are expanded in input order.
func FromIntervals(recs []model.IntervalRecord) []model.StepPoint {
	if len(recs) == 0 {
		return nil
	}
	out := make([]model.StepPoint, 0, 2*len(recs))
	for _, r := range recs {
		if !r.Valid() {
			continue
		}
		out = append(out, model.StepPoint{Entity: r.Entity, Date: r.From, Rating: r.Rating})
		if !r.To.IsZero() {
			out = append(out, model.StepPoint{Entity: r.Entity, Date: r.To, Rating: r.Rating})
		}
	}
	return out
}

// FromObservations expands a date-ascending observation sequence into
// step points. Each observation contributes its own point; every
// observation except the last also contributes a hold point carrying
// its rating at the next observation's date, emitted before that
// observation's own point. The rating attributed to a date range is
// the one known at the start of the range, persisted until superseded.
// n observations yield exactly 2n-1 points.
func FromObservations(obs []model.Observation) []model.StepPoint {
	if len(obs) == 0 {
		return nil
	}
	out := make([]model.StepPoint, 0, 2*len(obs)-1)
	for i := range obs {
		if i > 0 {
			prev := obs[i-1]
			out = append(out, model.StepPoint{Entity: prev.Entity, Date: obs[i].Date, Rating: prev.Rating})
		}
		out = append(out, model.StepPoint{Entity: obs[i].Entity, Date: obs[i].Date, Rating: obs[i].Rating})
	}
	return out
}

// Expand dispatches on the series shape: interval records when present,
// otherwise plain observations. An empty series expands to nothing.
func Expand(s model.RawSeries) []model.StepPoint {
	if len(s.Intervals) > 0 {
		return FromIntervals(s.Intervals)
	}
	return FromObservations(s.Obs)
}
