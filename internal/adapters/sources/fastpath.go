package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/pkg/logger"
	"github.com/runeset/elotrace/pkg/metrics"
)

// seriesLine matches one pre-built series row: an ISO date, a comma,
// semicolon or tab separator, and a numeric value.
var seriesLine = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[,;\t]\s*(-?\d+(?:\.\d+)?)\s*$`)

// fastPathAdapter tries a fixed list of pre-built series endpoints
// before the caller falls back to the year-by-year crawl. Exhausting
// all candidates is "no result", not an error.
type fastPathAdapter struct {
	templates []string
	timeout   time.Duration
	client    *guardedClient
	log       logger.Logger
}

func newFastPathAdapter(templates []string, timeout time.Duration, client *guardedClient) *fastPathAdapter {
	return &fastPathAdapter{
		templates: templates,
		timeout:   timeout,
		client:    client,
		log:       logger.Get().Named("sources.fastpath"),
	}
}

// Fetch tries each candidate endpoint in order; the first whose body
// yields at least one parsable date,value line wins and returns all
// its parsed lines, sorted by date.
func (a *fastPathAdapter) Fetch(ctx context.Context, entity string) (model.RawSeries, bool, error) {
	for _, tmpl := range a.templates {
		if err := ctx.Err(); err != nil {
			return model.RawSeries{}, false, err
		}
		target := fmt.Sprintf(tmpl, url.PathEscape(entity))

		body, err := a.client.get(ctx, "fastpath", target, a.timeout)
		if err != nil {
			metrics.RecordFastpathAttempt("error")
			a.log.Debug(ctx, "fastpath candidate failed",
				logger.String("entity", entity),
				logger.String("url", target),
				logger.Error(err))
			continue
		}

		obs := parseSeriesLines(entity, string(body))
		if len(obs) == 0 {
			metrics.RecordFastpathAttempt("miss")
			continue
		}

		metrics.RecordFastpathAttempt("hit")
		sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
		return model.RawSeries{Entity: entity, Kind: model.SourceNational, Obs: obs}, true, nil
	}
	return model.RawSeries{}, false, nil
}

// parseSeriesLines extracts every date,value line from a body; lines
// that do not match the shape are skipped.
func parseSeriesLines(entity, body string) []model.Observation {
	var obs []model.Observation
	for _, line := range strings.Split(body, "\n") {
		m := seriesLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		date, err := model.ParseDate(m[1])
		if err != nil {
			continue
		}
		rating, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		obs = append(obs, model.Observation{Entity: entity, Date: date, Rating: rating})
	}
	return obs
}
