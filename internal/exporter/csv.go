// Package exporter serializes a series table to downloadable tabular
// formats. Columns follow the table's active transform flags: date and
// entity and raw rating always, smoothed and delta only when computed.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/runeset/elotrace/internal/domain/model"
)

// utf8BOM prefixes CSV output when requested so spreadsheet tools
// detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF} //nolint:gochecknoglobals

// Headers returns the column set for a table, in output order.
func Headers(t model.Table) []string {
	headers := []string{"date", "entity", "rating"}
	if t.HasSmoothed {
		headers = append(headers, "smoothed")
	}
	if t.HasDelta {
		headers = append(headers, "delta")
	}
	return headers
}

// record renders one row under the table's column set.
func record(t model.Table, r model.Row) []string {
	rec := []string{
		model.FormatDate(r.Date),
		r.Entity,
		formatRating(r.Rating),
	}
	if t.HasSmoothed {
		rec = append(rec, formatRating(r.Smoothed))
	}
	if t.HasDelta {
		rec = append(rec, formatRating(r.Delta))
	}
	return rec
}

// formatRating renders a rating with minimal round-trip precision.
func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV streams the table as comma-separated text. Rows keep the
// table's entity-then-date order.
func WriteCSV(w io.Writer, t model.Table, opts ...CSVOption) error {
	var cfg csvConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("write bom: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Headers(t)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range t.Rows {
		if err := cw.Write(record(t, t.Rows[i])); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// csvConfig collects CSV writing choices.
type csvConfig struct {
	bom bool
}

// CSVOption applies a configuration option to WriteCSV.
type CSVOption func(*csvConfig)

// WithBOM prefixes the output with a UTF-8 byte order mark.
func WithBOM() CSVOption {
	return func(c *csvConfig) {
		c.bom = true
	}
}
