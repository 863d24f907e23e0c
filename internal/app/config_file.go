package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Nested
// sections improve readability and map naturally to flags.
type FileConfig struct {
	Input  string `yaml:"input" json:"input"`
	Output string `yaml:"output" json:"output"`
	Report string `yaml:"report" json:"report"`

	Sinta struct {
		Base string `yaml:"base" json:"base"`
		View string `yaml:"view" json:"view"`
		UA   string `yaml:"ua" json:"ua"`
	} `yaml:"sinta" json:"sinta"`

	Crawl struct {
		Delay        time.Duration `yaml:"delay" json:"delay"`
		Timeout      time.Duration `yaml:"timeout" json:"timeout"`
		MaxAttempts  int           `yaml:"maxAttempts" json:"maxAttempts"`
		IgnoreRobots bool          `yaml:"ignoreRobots" json:"ignoreRobots"`
	} `yaml:"crawl" json:"crawl"`

	Cache struct {
		Dir    string        `yaml:"dir" json:"dir"`
		MaxAge time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear  bool          `yaml:"clear" json:"clear"`
	} `yaml:"cache" json:"cache"`

	Store struct {
		Out    string `yaml:"out" json:"out"`
		KodePT string `yaml:"kodePT" json:"kodePT"`
	} `yaml:"store" json:"store"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields
// that are currently unset or still at their flag default. Flags should
// already have been parsed; this lets file config supply defaults while
// preserving explicit flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	const (
		inputDefault    = "institutions.csv"
		outputDefault   = "sinta_metrics_cluster.json"
		baseURLDefault  = "https://sinta.kemdiktisaintek.go.id"
		viewDefault     = "matricscluster2026"
		uaDefault       = "sintametrics/1.0 (+https://github.com/rahadiankp/sintametrics)"
		cacheDirDefault = ".sintametrics-cache"
		delayDefault    = time.Second
		timeoutDefault  = 15 * time.Second
		attemptsDefault = 2
	)

	if (cfg.InputPath == "" || cfg.InputPath == inputDefault) && fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if (cfg.OutputPath == "" || cfg.OutputPath == outputDefault) && fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if cfg.ReportPath == "" && fc.Report != "" {
		cfg.ReportPath = fc.Report
	}

	if (cfg.BaseURL == "" || cfg.BaseURL == baseURLDefault) && fc.Sinta.Base != "" {
		cfg.BaseURL = fc.Sinta.Base
	}
	if (cfg.View == "" || cfg.View == viewDefault) && fc.Sinta.View != "" {
		cfg.View = fc.Sinta.View
	}
	if (cfg.UserAgent == "" || cfg.UserAgent == uaDefault) && fc.Sinta.UA != "" {
		cfg.UserAgent = fc.Sinta.UA
	}

	if (cfg.Delay == 0 || cfg.Delay == delayDefault) && fc.Crawl.Delay > 0 {
		cfg.Delay = fc.Crawl.Delay
	}
	if (cfg.Timeout == 0 || cfg.Timeout == timeoutDefault) && fc.Crawl.Timeout > 0 {
		cfg.Timeout = fc.Crawl.Timeout
	}
	if (cfg.MaxAttempts == 0 || cfg.MaxAttempts == attemptsDefault) && fc.Crawl.MaxAttempts > 0 {
		cfg.MaxAttempts = fc.Crawl.MaxAttempts
	}
	if !cfg.IgnoreRobots && fc.Crawl.IgnoreRobots {
		cfg.IgnoreRobots = true
	}

	if (cfg.CacheDir == "" || cfg.CacheDir == cacheDirDefault) && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}

	if cfg.StoreOutPath == "" && fc.Store.Out != "" {
		cfg.StoreOutPath = fc.Store.Out
	}
	if cfg.StoreKodePT == "" && fc.Store.KodePT != "" {
		cfg.StoreKodePT = fc.Store.KodePT
	}

	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if trim(cfg.InputPath) == "" {
		return errors.New("config: input path is required")
	}
	if trim(cfg.OutputPath) == "" {
		return errors.New("config: output path is required")
	}
	if trim(cfg.BaseURL) == "" {
		return errors.New("config: sinta.base is required")
	}
	if cfg.Delay < 0 || cfg.Timeout < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	if cfg.StoreKodePT != "" && cfg.StoreOutPath == "" {
		return errors.New("config: store.kodePT requires store.out")
	}
	return nil
}

func trim(s string) string {
	i := 0
	j := len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t' || s[j-1] == '\n' || s[j-1] == '\r') {
		j--
	}
	return s[i:j]
}
