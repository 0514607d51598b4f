package sources

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/pkg/logger"
	"github.com/runeset/elotrace/pkg/metrics"
)

// clubAdapter fetches interval-based club ratings: a CSV document per
// club where each row states the rating held from one date until
// another (or until now).
type clubAdapter struct {
	base    string
	timeout time.Duration
	client  *guardedClient
	log     logger.Logger
}

func newClubAdapter(base string, timeout time.Duration, client *guardedClient) *clubAdapter {
	return &clubAdapter{
		base:    strings.TrimRight(base, "/"),
		timeout: timeout,
		client:  client,
		log:     logger.Get().Named("sources.club"),
	}
}

// Fetch retrieves and parses the interval records for one club.
// Transport failures fail the whole fetch; rows that do not parse are
// dropped, so a club whose document is entirely junk comes back as an
// empty series rather than an error.
func (a *clubAdapter) Fetch(ctx context.Context, entity string) (model.RawSeries, error) {
	target := a.base + "/" + url.PathEscape(entity)

	body, err := a.client.get(ctx, string(model.SourceClub), target, a.timeout)
	if err != nil {
		return model.RawSeries{}, &TransportError{Entity: entity, Source: model.SourceClub, Err: err}
	}

	recs, dropped := parseClubCSV(entity, body)
	metrics.RecordParseRows(string(model.SourceClub), "kept", len(recs))
	metrics.RecordParseRows(string(model.SourceClub), "dropped", dropped)
	a.log.Debug(ctx, "club document parsed",
		logger.String("entity", entity),
		logger.Int("kept", len(recs)),
		logger.Int("dropped", dropped))

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].From.Before(recs[j].From) })
	return model.RawSeries{Entity: entity, Kind: model.SourceClub, Intervals: recs}, nil
}

// Column names recognized in the club CSV header, case-insensitive.
// Extra columns (rank, country, level) are ignored.
const (
	colFrom   = "from"
	colTo     = "to"
	colRating = "elo"
)

// parseClubCSV turns the raw CSV body into interval records, counting
// dropped rows. Header-index mapping keeps the parser alive when the
// upstream reorders or adds columns.
func parseClubCSV(entity string, body []byte) (recs []model.IntervalRecord, dropped int) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil || len(rows) == 0 {
		return nil, 0
	}

	idx := headerIndex(rows[0])
	iFrom, okFrom := idx[colFrom]
	iTo, okTo := idx[colTo]
	iRating, okRating := idx[colRating]
	if !okFrom || !okRating {
		return nil, len(rows) - 1
	}

	for _, row := range rows[1:] {
		if iFrom >= len(row) || iRating >= len(row) {
			dropped++
			continue
		}
		rating, err := strconv.ParseFloat(strings.TrimSpace(row[iRating]), 64)
		if err != nil {
			dropped++
			continue
		}
		from, err := model.ParseDate(strings.TrimSpace(row[iFrom]))
		if err != nil {
			dropped++
			continue
		}

		rec := model.IntervalRecord{Entity: entity, From: from, Rating: rating}
		if okTo && iTo < len(row) {
			// An unparseable or empty To leaves the interval open.
			if to, err := model.ParseDate(strings.TrimSpace(row[iTo])); err == nil {
				rec.To = to
			}
		}
		if !rec.Valid() {
			dropped++
			continue
		}
		recs = append(recs, rec)
	}
	return recs, dropped
}

// headerIndex maps lowercased header names to their column positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, taken := idx[key]; !taken {
			idx[key] = i
		}
	}
	return idx
}
