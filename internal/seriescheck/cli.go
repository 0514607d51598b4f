package seriescheck

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/runeset/elotrace/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "series_check_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the series check tool.
func ShowHelp() {
	os.Stdout.WriteString(`Elotrace Series Check Tool
==========================

Fetches a rating series from a running elotrace instance and verifies
the response invariants: row ordering, column presence, summary
arithmetic and export consistency.

Usage:
  go run cmd/series-check/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9480")
  -team string
        Primary team to fetch (default "Arsenal")
  -compare string
        Comma separated comparison teams
  -source string
        Data source, club or national (default "club")
  -from string
        Inclusive start date, YYYY-MM-DD
  -to string
        Inclusive end date, YYYY-MM-DD
  -window int
        Smoothing window to request
  -delta
        Request rebased values
  -years string
        Snapshot year range for the national source, e.g. 1950-2000
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for the fetched series (default: series_check_TIMESTAMP.json)
  -log string
        Log file for run output (default: series_check_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Check the default club series
  go run cmd/series-check/main.go -team Arsenal

  # Check a national comparison with smoothing
  go run cmd/series-check/main.go -source national -team Brazil -compare Germany -window 5

  # Check a rebased, date-bounded series
  go run cmd/series-check/main.go -team Arsenal -from 2010-01-01 -to 2020-01-01 -delta
`)
}
