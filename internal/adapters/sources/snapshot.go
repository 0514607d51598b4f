package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runeset/elotrace/internal/domain/alias"
	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/pkg/logger"
	"github.com/runeset/elotrace/pkg/metrics"
)

// snapshotAdapter crawls the annual national-team ranking pages, one
// page per year, and extracts the requested team's rating from each.
// A year with no match or a failed page is skipped; only a range with
// zero matches is a failure.
type snapshotAdapter struct {
	base    string
	timeout time.Duration
	client  *guardedClient
	matcher alias.Matcher
	log     logger.Logger
}

func newSnapshotAdapter(base string, timeout time.Duration, client *guardedClient, m alias.Matcher) *snapshotAdapter {
	return &snapshotAdapter{
		base:    strings.TrimRight(base, "/"),
		timeout: timeout,
		client:  client,
		matcher: m,
		log:     logger.Get().Named("sources.snapshot"),
	}
}

// Fetch crawls the inclusive year range for one team. Each matched
// year yields one observation dated December 31 of that year.
func (a *snapshotAdapter) Fetch(ctx context.Context, entity string, years model.YearRange) (model.RawSeries, error) {
	var obs []model.Observation
	for year := years.From; year <= years.To; year++ {
		if err := ctx.Err(); err != nil {
			return model.RawSeries{}, &TransportError{Entity: entity, Source: model.SourceNational, Err: err}
		}

		rating, ok, err := a.fetchYear(ctx, entity, year)
		switch {
		case err != nil:
			// Per-year failures are "no data for that year", never fatal.
			metrics.RecordYearPage("skipped")
			a.log.Warn(ctx, "year page failed",
				logger.String("entity", entity),
				logger.Int("year", year),
				logger.Error(err))
			continue
		case !ok:
			metrics.RecordYearPage("miss")
			continue
		}

		metrics.RecordYearPage("hit")
		obs = append(obs, model.Observation{
			Entity: entity,
			Date:   model.EndOfYear(year),
			Rating: rating,
		})
	}

	if len(obs) == 0 {
		return model.RawSeries{}, &NoDataError{Entity: entity, Years: years}
	}
	metrics.RecordParseRows(string(model.SourceNational), "kept", len(obs))
	return model.RawSeries{Entity: entity, Kind: model.SourceNational, Obs: obs}, nil
}

func (a *snapshotAdapter) fetchYear(ctx context.Context, entity string, year int) (float64, bool, error) {
	target := fmt.Sprintf("%s/%d", a.base, year)
	body, err := a.client.get(ctx, string(model.SourceNational), target, a.timeout)
	if err != nil {
		return 0, false, err
	}

	text, err := flattenHTML(body)
	if err != nil {
		return 0, false, fmt.Errorf("flatten page: %w", err)
	}

	rating, ok := extractRating(text, entity, a.matcher)
	return rating, ok, nil
}
