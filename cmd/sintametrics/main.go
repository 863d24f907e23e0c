package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rahadiankp/sintametrics/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath   string
		inputPath    string
		outputPath   string
		reportPath   string
		baseURL      string
		view         string
		userAgent    string
		delay        time.Duration
		timeout      time.Duration
		maxAttempts  int
		ignoreRobots bool
		cacheDir     string
		cacheMaxAge  time.Duration
		cacheClear   bool
		storeOut     string
		storeKodePT  string
		verbose      bool
	)

	flag.StringVar(&configPath, "config", "", "Path to optional YAML/JSON config file")
	flag.StringVar(&inputPath, "input", "institutions.csv", "Path to roster CSV (Kode PT, Nama Institusi, Sinta ID Link, Klaster)")
	flag.StringVar(&outputPath, "output", "sinta_metrics_cluster.json", "Path to write the crawled metrics JSON collection")
	flag.StringVar(&reportPath, "report", "", "Optional path for a PDF crawl summary")
	flag.StringVar(&baseURL, "sinta.base", "https://sinta.kemdiktisaintek.go.id", "SINTA base URL")
	flag.StringVar(&view, "sinta.view", "matricscluster2026", "Profile view parameter selecting the scoring table")
	flag.StringVar(&userAgent, "sinta.ua", "sintametrics/1.0 (+https://github.com/rahadiankp/sintametrics)", "Custom User-Agent for SINTA requests")
	flag.DurationVar(&delay, "crawl.delay", time.Second, "Fixed delay between institution requests")
	flag.DurationVar(&timeout, "crawl.timeout", 15*time.Second, "Per-request timeout")
	flag.IntVar(&maxAttempts, "crawl.maxAttempts", 2, "Attempts per page including the first")
	flag.BoolVar(&ignoreRobots, "crawl.ignoreRobots", false, "Skip the robots.txt check (use only against hosts you operate)")
	flag.StringVar(&cacheDir, "cache.dir", ".sintametrics-cache", "Page cache directory; empty disables caching")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cached pages before purge (e.g. 24h); 0 disables")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear page cache before the crawl")
	flag.StringVar(&storeOut, "store.out", "", "Optional path to write a metric-store snapshot seeded from one crawled institution")
	flag.StringVar(&storeKodePT, "store.kodePT", "", "Kode PT selecting the institution that seeds the store (default: first crawled)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	cfg := app.Config{
		InputPath:    inputPath,
		OutputPath:   outputPath,
		ReportPath:   reportPath,
		BaseURL:      baseURL,
		View:         view,
		UserAgent:    userAgent,
		Delay:        delay,
		Timeout:      timeout,
		MaxAttempts:  maxAttempts,
		IgnoreRobots: ignoreRobots,
		CacheDir:     cacheDir,
		CacheMaxAge:  cacheMaxAge,
		CacheClear:   cacheClear,
		StoreOutPath: storeOut,
		StoreKodePT:  storeKodePT,
		Verbose:      verbose,
	}

	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("load config file")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("crawl failed")
		// Exit code policy: 2 when the whole crawl yielded nothing, 1 for
		// configuration and I/O failures. Per-institution problems are
		// warnings and never reach here.
		if errors.Is(err, app.ErrNoResults) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	ctx := context.Background()

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return a.Run(ctx)
}
