package seriescheck

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/runeset/elotrace/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete verification: health probe, series fetch,
// invariant battery and a CSV export cross-check.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	runID := uuid.NewString()

	logger.Get().Info(ctx, "starting series check",
		logger.String("runID", runID),
		logger.String("baseURL", config.BaseURL),
		logger.String("team", config.Team),
		logger.String("compare", config.Compare),
		logger.String("source", config.Source),
		logger.Int("window", config.Window),
		logger.Bool("delta", config.Delta),
		logger.String("timeout", config.Timeout.String()))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	res, err := fetchSeries(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("series fetch failed: %w", err)
	}

	if err := runChecks(config, res, stats); err != nil {
		return fmt.Errorf("invariant checks failed: %w", err)
	}

	if err := crossCheckExport(ctx, config, res, stats); err != nil {
		return fmt.Errorf("export cross-check failed: %w", err)
	}

	if err := saveSeriesToFile(ctx, config, res); err != nil {
		logger.Get().Warn(ctx, "failed to save series to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "series check completed successfully", logger.String("runID", runID))
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// fetchSeries requests the series endpoint and decodes the payload.
func fetchSeries(ctx context.Context, config *Config, stats *Stats) (*SeriesResponse, error) {
	qs, err := seriesQuery(config)
	if err != nil {
		return nil, err
	}

	log.Printf("Fetching series for %q from %s", config.Team, config.BaseURL)

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/api/v1/series?"+qs)
	if err != nil {
		return nil, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("series request returned status %d: %s", resp.StatusCode, string(body))
	}

	var res SeriesResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to decode series response: %w", err)
	}

	stats.PointsRetrieved = len(res.Points)
	stats.WarningsLogged = len(res.Warnings)
	entities := map[string]bool{}
	for _, p := range res.Points {
		entities[p.Entity] = true
	}
	stats.EntitiesSeen = len(entities)

	for _, w := range res.Warnings {
		log.Printf("warning for %q (%s): %s", w.Entity, w.Kind, w.Message)
	}
	log.Printf("Retrieved %d points across %d teams", stats.PointsRetrieved, stats.EntitiesSeen)
	return &res, nil
}

// crossCheckExport downloads the CSV for the same query and verifies
// the row count matches the JSON table.
func crossCheckExport(ctx context.Context, config *Config, res *SeriesResponse, stats *Stats) error {
	qs, err := seriesQuery(config)
	if err != nil {
		return err
	}

	log.Println("Cross-checking CSV export...")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/api/v1/export?"+qs+"&format=csv")
	if err != nil {
		return err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("export request returned status %d", resp.StatusCode)
	}
	stats.ExportBytes = len(body)
	stats.ChecksRun++

	raw := bytes.TrimPrefix(body, []byte{0xEF, 0xBB, 0xBF})
	rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil {
		stats.ChecksFailed++
		return fmt.Errorf("export is not parseable CSV: %w", err)
	}
	if len(rows) != len(res.Points)+1 {
		stats.ChecksFailed++
		return fmt.Errorf("export has %d data rows, series has %d points", len(rows)-1, len(res.Points))
	}
	if len(rows) > 0 && len(rows[0]) != len(res.Columns) {
		stats.ChecksFailed++
		return fmt.Errorf("export has %d columns, series reports %d", len(rows[0]), len(res.Columns))
	}

	log.Printf("Export matches: %d rows, %d columns, %d bytes", len(rows)-1, len(res.Columns), stats.ExportBytes)
	return nil
}

// saveSeriesToFile writes the fetched payload for later inspection.
func saveSeriesToFile(ctx context.Context, config *Config, res *SeriesResponse) error {
	if len(res.Points) == 0 {
		return fmt.Errorf("no points to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "series_check_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}
	if err := os.WriteFile(filename, data, logFilePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "series saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("pointsRetrieved", stats.PointsRetrieved),
		logger.Int("entitiesSeen", stats.EntitiesSeen),
		logger.Int("warningsLogged", stats.WarningsLogged),
		logger.Int("checksRun", stats.ChecksRun),
		logger.Int("checksFailed", stats.ChecksFailed),
		logger.Int("exportBytes", stats.ExportBytes),
		logger.String("duration", stats.Duration.String()))
}
