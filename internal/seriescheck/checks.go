package seriescheck

import (
	"fmt"
	"log"
	"math"
	"time"
)

const summaryTolerance = 1e-6

// check is one named invariant over a fetched series.
type check struct {
	name string
	run  func(config *Config, res *SeriesResponse) error
}

// responseChecks is the fixed battery every run executes.
var responseChecks = []check{
	{"rows ordered by entity then date", checkOrdering},
	{"dates inside the requested range", checkDateBounds},
	{"columns match the requested transforms", checkColumns},
	{"summary arithmetic is consistent", checkSummary},
	{"rebased series start at zero", checkDeltaBaseline},
	{"scale hint honors rebasing", checkScale},
}

// runChecks executes the battery and tallies results into stats.
func runChecks(config *Config, res *SeriesResponse, stats *Stats) error {
	log.Println("Verifying response invariants...")

	var failed int
	for _, c := range responseChecks {
		stats.ChecksRun++
		if err := c.run(config, res); err != nil {
			stats.ChecksFailed++
			failed++
			log.Printf("FAIL %s: %v", c.name, err)
			continue
		}
		if config.Verbose {
			log.Printf("ok   %s", c.name)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(responseChecks))
	}
	log.Printf("All %d response checks passed", len(responseChecks))
	return nil
}

// checkOrdering verifies rows are grouped by entity with nondecreasing
// dates inside each group. Equal consecutive dates are legal; that is
// how rating jumps are drawn.
func checkOrdering(_ *Config, res *SeriesResponse) error {
	seen := map[string]bool{}
	var entity string
	var prev time.Time

	for i, p := range res.Points {
		d, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return fmt.Errorf("point %d has unparseable date %q", i, p.Date)
		}
		if p.Entity != entity {
			if seen[p.Entity] {
				return fmt.Errorf("entity %q appears in two separate blocks", p.Entity)
			}
			seen[p.Entity] = true
			entity = p.Entity
			prev = d
			continue
		}
		if d.Before(prev) {
			return fmt.Errorf("entity %q goes backwards at point %d (%s after %s)",
				entity, i, p.Date, prev.Format("2006-01-02"))
		}
		prev = d
	}
	return nil
}

// checkDateBounds verifies every point falls inside the requested window.
func checkDateBounds(config *Config, res *SeriesResponse) error {
	var from, to time.Time
	var err error
	if config.From != "" {
		if from, err = time.Parse("2006-01-02", config.From); err != nil {
			return fmt.Errorf("bad -from flag: %w", err)
		}
	}
	if config.To != "" {
		if to, err = time.Parse("2006-01-02", config.To); err != nil {
			return fmt.Errorf("bad -to flag: %w", err)
		}
	}

	for i, p := range res.Points {
		d, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return fmt.Errorf("point %d has unparseable date %q", i, p.Date)
		}
		if !from.IsZero() && d.Before(from) {
			return fmt.Errorf("point %d (%s) precedes the requested start %s", i, p.Date, config.From)
		}
		if !to.IsZero() && d.After(to.Add(24*time.Hour)) {
			return fmt.Errorf("point %d (%s) exceeds the requested end %s", i, p.Date, config.To)
		}
	}
	return nil
}

// checkColumns verifies optional columns appear exactly when requested.
func checkColumns(config *Config, res *SeriesResponse) error {
	has := map[string]bool{}
	for _, c := range res.Columns {
		has[c] = true
	}
	for _, required := range []string{"date", "entity", "rating"} {
		if !has[required] {
			return fmt.Errorf("missing required column %q", required)
		}
	}

	wantSmoothed := config.Window > 0
	if has["smoothed"] != wantSmoothed {
		return fmt.Errorf("smoothed column presence %v does not match window=%d", has["smoothed"], config.Window)
	}
	if has["delta"] != config.Delta {
		return fmt.Errorf("delta column presence %v does not match delta=%v", has["delta"], config.Delta)
	}

	for i, p := range res.Points {
		if wantSmoothed && p.Smoothed == nil {
			return fmt.Errorf("point %d is missing its smoothed value", i)
		}
		if config.Delta && p.Delta == nil {
			return fmt.Errorf("point %d is missing its delta value", i)
		}
	}
	return nil
}

// checkSummary verifies the digest against the primary team's points.
func checkSummary(config *Config, res *SeriesResponse) error {
	if res.Summary == nil {
		// Legal when the primary team failed but a comparison survived.
		for _, w := range res.Warnings {
			if w.Entity == config.Team {
				return nil
			}
		}
		return fmt.Errorf("summary missing without a warning for %q", config.Team)
	}

	s := res.Summary
	if diff := s.Change - (s.Latest - s.First); math.Abs(diff) > summaryTolerance {
		return fmt.Errorf("change %.6f does not equal latest-first %.6f", s.Change, s.Latest-s.First)
	}

	wantBasis := "rating"
	if config.Window > 0 {
		wantBasis = "smoothed"
	}
	if s.Basis != wantBasis {
		return fmt.Errorf("summary basis %q, expected %q for window=%d", s.Basis, wantBasis, config.Window)
	}

	var first, latest *Point
	for i := range res.Points {
		if res.Points[i].Entity != s.Entity {
			continue
		}
		if first == nil {
			first = &res.Points[i]
		}
		latest = &res.Points[i]
	}
	if first == nil {
		return fmt.Errorf("summary names %q but no points carry it", s.Entity)
	}

	firstVal, latestVal := first.Rating, latest.Rating
	if config.Window > 0 && first.Smoothed != nil && latest.Smoothed != nil {
		firstVal, latestVal = *first.Smoothed, *latest.Smoothed
	}
	if math.Abs(s.First-firstVal) > summaryTolerance {
		return fmt.Errorf("summary first %.6f does not match first point %.6f", s.First, firstVal)
	}
	if math.Abs(s.Latest-latestVal) > summaryTolerance {
		return fmt.Errorf("summary latest %.6f does not match last point %.6f", s.Latest, latestVal)
	}
	return nil
}

// checkDeltaBaseline verifies each team's first rebased value is zero.
func checkDeltaBaseline(config *Config, res *SeriesResponse) error {
	if !config.Delta {
		return nil
	}
	seen := map[string]bool{}
	for i, p := range res.Points {
		if seen[p.Entity] {
			continue
		}
		seen[p.Entity] = true
		if p.Delta == nil {
			return fmt.Errorf("point %d is missing its delta value", i)
		}
		if math.Abs(*p.Delta) > summaryTolerance {
			return fmt.Errorf("entity %q starts at delta %.6f, expected 0", p.Entity, *p.Delta)
		}
	}
	return nil
}

// checkScale verifies rebased views never come back with a log axis.
func checkScale(config *Config, res *SeriesResponse) error {
	if res.Scale.Type != "linear" && res.Scale.Type != "log" {
		return fmt.Errorf("unknown scale type %q", res.Scale.Type)
	}
	if config.Delta && res.Scale.Type == "log" {
		return fmt.Errorf("rebased series came back with a log axis")
	}
	if res.Scale.Type == "log" && res.Scale.Min >= res.Scale.Max {
		return fmt.Errorf("log axis bounds are inverted: [%.2f, %.2f]", res.Scale.Min, res.Scale.Max)
	}
	return nil
}
