package model

import (
	"strings"
	"time"
)

// SourceKind selects which upstream family serves an entity.
type SourceKind string

// Known source kinds.
const (
	SourceClub     SourceKind = "club"     // interval-based CSV endpoint
	SourceNational SourceKind = "national" // annual snapshot pages (+ fast path)
)

// Valid reports whether the kind is one of the known sources.
func (k SourceKind) Valid() bool {
	return k == SourceClub || k == SourceNational
}

// YearRange is the inclusive crawl range for annual snapshots.
// A zero To means "up to the current year".
type YearRange struct {
	From int
	To   int
}

// IsZero reports whether no range was supplied.
func (y YearRange) IsZero() bool { return y.From == 0 && y.To == 0 }

// Normalize resolves a zero To against the given current year and
// swaps inverted bounds.
func (y YearRange) Normalize(nowYear int) YearRange {
	out := y
	if out.To == 0 {
		out.To = nowYear
	}
	if out.From == 0 {
		out.From = out.To
	}
	if out.From > out.To {
		out.From, out.To = out.To, out.From
	}
	return out
}

// Years returns the number of years covered, inclusive.
func (y YearRange) Years() int {
	if y.To < y.From {
		return 0
	}
	return y.To - y.From + 1
}

// Query carries every user-chosen option for one series request.
type Query struct {
	Entity      string     // primary entity, required
	Compare     []string   // comparison entities, first N used
	From        time.Time  // zero = unbounded start
	To          time.Time  // zero = unbounded end; inclusive of the full day
	Window      int        // trailing smoothing window in entries, 0 = off
	Delta       bool       // rebase each entity to its first value in the window
	CustomScale bool       // log display scale, meaningful only when Delta is off
	ScaleMin    float64    // log scale lower bound
	ScaleMax    float64    // log scale upper bound
	Source      SourceKind // defaults to SourceClub
	Years       YearRange  // national crawls only
}

// Normalize trims entity names, drops empties and duplicates from the
// comparison list (including duplicates of the primary), and keeps only
// the first maxCompare comparison entities. Window is clamped into
// [0, maxWindow]. The receiver is unchanged.
func (q Query) Normalize(maxCompare, maxWindow int) Query {
	out := q
	out.Entity = strings.TrimSpace(q.Entity)
	if out.Source == "" {
		out.Source = SourceClub
	}

	out.Compare = nil
	seen := map[string]bool{out.Entity: true}
	for _, c := range q.Compare {
		if len(out.Compare) >= maxCompare {
			break
		}
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out.Compare = append(out.Compare, c)
	}

	if out.Window < 0 {
		out.Window = 0
	}
	if maxWindow > 0 && out.Window > maxWindow {
		out.Window = maxWindow
	}
	return out
}

// EntityList returns the primary entity followed by the comparison
// entities, fetch order.
func (q Query) EntityList() []string {
	out := make([]string, 0, 1+len(q.Compare))
	out = append(out, q.Entity)
	out = append(out, q.Compare...)
	return out
}

// Scale types for the display axis.
const (
	ScaleLinear = "linear"
	ScaleLog    = "log"
)

// Scale is the vertical-axis hint handed to presentation. Delta series
// can be zero or negative, so delta mode always forces a linear axis.
type Scale struct {
	Type string
	Min  float64
	Max  float64
	Auto bool // bounds chosen by the renderer
}

// DisplayScale derives the axis hint from the query options.
func (q Query) DisplayScale() Scale {
	if q.Delta || !q.CustomScale {
		return Scale{Type: ScaleLinear, Auto: true}
	}
	return Scale{Type: ScaleLog, Min: q.ScaleMin, Max: q.ScaleMax}
}

// Basis columns a summary can be computed over.
const (
	BasisRating   = "rating"
	BasisSmoothed = "smoothed"
)

// Summary carries the headline numbers for the primary entity within
// the active window: latest and first value of the display basis
// column, and their difference.
type Summary struct {
	Entity string
	Basis  string // BasisRating or BasisSmoothed
	Latest float64
	First  float64
	Change float64
}

// ErrorKind classifies a per-entity fetch failure.
type ErrorKind string

// Error kinds, in rough order of how actionable they are for the user.
const (
	ErrorTransport ErrorKind = "transport" // unreachable, timeout, non-2xx
	ErrorParse     ErrorKind = "parse"     // rows present but none usable
	ErrorLookup    ErrorKind = "lookup"    // name matched in zero years
)

// EntityError is a collected, human-readable per-entity failure.
// These are gathered and reported alongside whatever entities
// succeeded; they never abort the pipeline on their own.
type EntityError struct {
	Entity      string
	Kind        ErrorKind
	Message     string
	Suggestions []string // alias variants, lookup failures only
}

// Result is the pipeline output handed to presentation.
type Result struct {
	Table     Table
	Summary   *Summary // nil when the primary entity has no rows
	Scale     Scale
	Errors    []EntityError
	FetchedAt time.Time
}
