package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/runeset/elotrace/internal/seriescheck"
)

// Default configuration constants.
const (
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9480", "Base URL of the service")
		team       = flag.String("team", "Arsenal", "Primary team to fetch")
		compare    = flag.String("compare", "", "Comma separated comparison teams")
		source     = flag.String("source", "club", "Data source: club or national")
		from       = flag.String("from", "", "Inclusive start date, YYYY-MM-DD")
		to         = flag.String("to", "", "Inclusive end date, YYYY-MM-DD")
		window     = flag.Int("window", 0, "Smoothing window to request")
		delta      = flag.Bool("delta", false, "Request rebased values")
		years      = flag.String("years", "", "Snapshot year range, e.g. 1950-2000")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for the fetched series (default: series_check_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for run output (default: series_check_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seriescheck.ShowHelp()
		return
	}

	if err := seriescheck.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &seriescheck.Config{
		BaseURL:    *baseURL,
		Team:       *team,
		Compare:    *compare,
		Source:     *source,
		From:       *from,
		To:         *to,
		Window:     *window,
		Delta:      *delta,
		Years:      *years,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := seriescheck.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Check failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
