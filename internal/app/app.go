// Package app wires the crawl together: roster in, one profile page per
// institution fetched at a fixed pace, score tables extracted, and the
// collection written out as JSON.
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/rahadiankp/sintametrics/internal/cache"
	"github.com/rahadiankp/sintametrics/internal/extract"
	"github.com/rahadiankp/sintametrics/internal/fetch"
	"github.com/rahadiankp/sintametrics/internal/robots"
	"github.com/rahadiankp/sintametrics/internal/roster"
	"github.com/rahadiankp/sintametrics/internal/store"
)

// InstitutionMetrics is one crawl result. JSON field names follow the legacy
// dump format so downstream notebooks keep reading the files unchanged.
type InstitutionMetrics struct {
	KodePT  string              `json:"Kode PT"`
	Nama    string              `json:"Nama Institusi"`
	Klaster string              `json:"Klaster"`
	SintaID string              `json:"Sinta ID"`
	Metrics *extract.SectionMap `json:"Metrics"`
}

// ErrNoResults is returned when not a single institution produced a score
// table. Individual failures are warn-and-continue; only an empty crawl is
// worth a non-zero exit.
var ErrNoResults = errors.New("no institutions produced metrics")

type App struct {
	cfg    Config
	client *fetch.Client
}

func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg}
	client := &fetch.Client{
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       cfg.MaxAttempts,
		PerRequestTimeout: cfg.Timeout,
	}
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			_ = cache.ClearDir(cfg.CacheDir)
		}
		if cfg.CacheMaxAge > 0 {
			// Purge expired pages; ignore errors to avoid failing startup.
			_, _ = cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
		}
		client.Cache = &cache.PageCache{Dir: cfg.CacheDir}
	}
	a.client = client
	return a, nil
}

// Run crawls the whole roster sequentially. One bad page never aborts the
// batch; fetch and extraction failures are logged and the institution is
// skipped.
func (a *App) Run(ctx context.Context) error {
	insts, err := roster.Load(a.cfg.InputPath)
	if err != nil {
		return fmt.Errorf("read roster: %w", err)
	}
	log.Info().Int("institutions", len(insts)).Str("input", a.cfg.InputPath).Msg("roster loaded")

	delay := a.cfg.Delay
	var rules robots.Rules
	if !a.cfg.IgnoreRobots {
		robotsURL := strings.TrimRight(a.cfg.BaseURL, "/") + "/robots.txt"
		rules = robots.Fetch(ctx, a.client.HTTPClient, robotsURL, a.cfg.UserAgent, a.client.Cache)
		if d, ok := rules.CrawlDelay(a.cfg.UserAgent); ok && d > delay {
			log.Info().Dur("delay", d).Msg("robots.txt crawl-delay raises the pacing interval")
			delay = d
		}
	}

	// rate.Every(0) is Inf, so a zero delay disables pacing (used in tests).
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	results := make([]InstitutionMetrics, 0, len(insts))
	for i, inst := range insts {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		pageURL := a.profileURL(inst.SintaID)
		if u, err := url.Parse(pageURL); err == nil && !rules.Allowed(a.cfg.UserAgent, u.RequestURI()) {
			log.Warn().Str("institution", inst.Nama).Str("url", pageURL).Msg("disallowed by robots.txt; skipping")
			continue
		}
		log.Info().
			Int("n", i+1).
			Int("total", len(insts)).
			Str("institution", inst.Nama).
			Str("sintaID", inst.SintaID).
			Msg("fetching profile")

		body, _, err := a.client.Get(ctx, pageURL)
		if err != nil {
			log.Warn().Err(err).Str("institution", inst.Nama).Str("url", pageURL).Msg("fetch failed; skipping")
			continue
		}
		m, err := extract.FromHTML(body)
		if err != nil {
			// ErrNoScoreTable is the expected shape of this failure; either
			// way the page yields nothing and the crawl moves on.
			log.Warn().Err(err).Str("institution", inst.Nama).Msg("no metrics on page; skipping")
			continue
		}
		results = append(results, InstitutionMetrics{
			KodePT:  inst.KodePT,
			Nama:    inst.Nama,
			Klaster: inst.Klaster,
			SintaID: inst.SintaID,
			Metrics: m,
		})
	}

	if len(results) == 0 {
		return ErrNoResults
	}
	if err := writeResults(a.cfg.OutputPath, results); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info().Int("institutions", len(results)).Str("out", a.cfg.OutputPath).Msg("wrote metrics collection")

	if a.cfg.ReportPath != "" {
		if err := writeSummaryPDF(results, a.cfg.ReportPath); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Info().Str("report", a.cfg.ReportPath).Msg("wrote crawl summary")
	}
	if a.cfg.StoreOutPath != "" {
		if err := seedStore(results, a.cfg.StoreKodePT, a.cfg.StoreOutPath); err != nil {
			return fmt.Errorf("seed store: %w", err)
		}
		log.Info().Str("store", a.cfg.StoreOutPath).Msg("wrote metric store snapshot")
	}
	return nil
}

// profileURL builds the metrics-cluster profile address for one Sinta ID.
func (a *App) profileURL(sintaID string) string {
	return fmt.Sprintf("%s/affiliations/profile/%s/?view=%s",
		strings.TrimRight(a.cfg.BaseURL, "/"),
		url.PathEscape(sintaID),
		url.QueryEscape(a.cfg.View))
}

// writeResults encodes the collection 2-space indented with non-ASCII kept
// unescaped, byte-compatible with the legacy dumps.
func writeResults(path string, results []InstitutionMetrics) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// seedStore loads one crawled institution's detail rows over the canonical
// defaults and saves the result as a flat snapshot for downstream tooling.
// With no Kode PT given, the first crawled institution is used.
func seedStore(results []InstitutionMetrics, kodePT string, path string) error {
	pick := &results[0]
	if kodePT != "" {
		pick = nil
		for i := range results {
			if results[i].KodePT == kodePT {
				pick = &results[i]
				break
			}
		}
		if pick == nil {
			return fmt.Errorf("no crawled institution with Kode PT %q", kodePT)
		}
	}
	st := store.New()
	st.LoadSections(pick.Metrics)
	for code, issue := range st.Validate() {
		log.Warn().Str("code", code).Str("institution", pick.Nama).Msg(issue)
	}
	return st.SaveFile(path)
}
