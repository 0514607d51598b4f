package seriescheck

import "time"

// Config holds configuration for a verification run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Team       string        // Primary team to fetch
	Compare    string        // Comma separated comparison teams
	Source     string        // club or national
	From       string        // Inclusive start date, YYYY-MM-DD
	To         string        // Inclusive end date, YYYY-MM-DD
	Window     int           // Smoothing window to request
	Delta      bool          // Request rebased values
	Years      string        // Snapshot year range, "1950-2000"
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for the fetched series
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// Point mirrors one wire row of the series endpoint.
type Point struct {
	Date     string   `json:"date"`
	Entity   string   `json:"entity"`
	Rating   float64  `json:"rating"`
	Smoothed *float64 `json:"smoothed,omitempty"`
	Delta    *float64 `json:"delta,omitempty"`
}

// Summary mirrors the digest block of the series endpoint.
type Summary struct {
	Entity string  `json:"entity"`
	Basis  string  `json:"basis"`
	Latest float64 `json:"latest"`
	First  float64 `json:"first"`
	Change float64 `json:"change"`
}

// Scale mirrors the axis hint of the series endpoint.
type Scale struct {
	Type string  `json:"type"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Auto bool    `json:"auto"`
}

// Warning mirrors a per-team fetch failure report.
type Warning struct {
	Entity      string   `json:"entity"`
	Kind        string   `json:"kind"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// SeriesResponse is the full series endpoint payload.
type SeriesResponse struct {
	Points    []Point   `json:"points"`
	Columns   []string  `json:"columns"`
	Summary   *Summary  `json:"summary"`
	Scale     Scale     `json:"scale"`
	Warnings  []Warning `json:"warnings"`
	FetchedAt string    `json:"fetched_at"`
}

// Stats holds verification run statistics.
type Stats struct {
	PointsRetrieved int
	EntitiesSeen    int
	WarningsLogged  int
	ChecksRun       int
	ChecksFailed    int
	ExportBytes     int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
