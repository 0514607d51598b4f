package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Media types for downloads.
const (
	mediaCSV  = "text/csv; charset=utf-8"
	mediaXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// handleExport streams the table as a file download. The format query
// parameter selects csv (default) or xlsx.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q, fields := s.parseSeriesQuery(r)
	if len(fields) > 0 {
		renderFieldErrors(w, r, fields)
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		renderFieldErrors(w, r, []FieldError{{Field: "format", Message: "must be one of: csv, xlsx"}})
		return
	}

	filename := fmt.Sprintf("elo_series_%s.%s", time.Now().UTC().Format("20060102"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	var err error
	switch format {
	case "csv":
		w.Header().Set("Content-Type", mediaCSV)
		err = s.deps.ExportCSV(r.Context(), q, w)
	case "xlsx":
		w.Header().Set("Content-Type", mediaXLSX)
		err = s.deps.ExportXLSX(r.Context(), q, w)
	}
	if err != nil {
		// Nothing was written yet on pipeline failures; the exporters
		// only touch the writer once the table is in hand.
		w.Header().Del("Content-Disposition")
		renderServiceError(w, r, err)
	}
}
