package app

import "time"

// Config holds runtime configuration for one crawl.
type Config struct {
	InputPath  string // roster CSV
	OutputPath string // JSON collection of crawl results
	ReportPath string // optional PDF summary

	// SINTA endpoint
	BaseURL   string
	View      string
	UserAgent string

	// Politeness
	Delay        time.Duration
	Timeout      time.Duration
	MaxAttempts  int
	IgnoreRobots bool // skip the robots.txt check

	// Page cache
	CacheDir    string
	CacheMaxAge time.Duration
	CacheClear  bool

	// Metric store seeding
	StoreOutPath string
	StoreKodePT  string

	Verbose bool
}
