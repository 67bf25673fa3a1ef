// Package config holds the settings of the scraper and report programs.
package config

import (
	"fmt"
	"net/url"
	"regexp"
	"time"
)

// Output formats accepted by Config.OutputFormat.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatAll  = "all"
)

var categoryPattern = regexp.MustCompile(`^\d+$`)

// Config holds scraper configuration.
type Config struct {
	BaseURL         string
	CategoryID      string
	PageSize        int
	MaxPages        int
	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	RetryBackoffMax time.Duration
	OutputFile      string
	OutputFormat    string // csv, json, xlsx, or all
	UserAgent       string
	MetricsAddr     string
	Verbose         bool
}

// DefaultConfig returns the settings for the AI books category.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "https://www.yes24.com",
		CategoryID:      "001001003032",
		PageSize:        24,
		MaxPages:        5,
		Timeout:         10 * time.Second,
		MaxRetries:      0,
		RetryBackoff:    200 * time.Millisecond,
		RetryBackoffMax: 2 * time.Second,
		OutputFile:      "yes24/data/yes24_ai.csv",
		OutputFormat:    FormatCSV,
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/144.0.0.0 Safari/537.36",
		MetricsAddr:     "",
		Verbose:         false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if !categoryPattern.MatchString(c.CategoryID) {
		return fmt.Errorf("category id must be numeric, got %q", c.CategoryID)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	switch c.OutputFormat {
	case FormatCSV, FormatJSON, FormatXLSX, FormatAll:
	default:
		return fmt.Errorf("output format must be csv, json, xlsx, or all")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}

// ReportConfig holds the settings of the report program.
type ReportConfig struct {
	InputFile string
	OutputDir string
	FontFile  string
	Bins      int
	Verbose   bool
}

// DefaultReportConfig reads the scraper's default output and writes next to it.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		InputFile: "yes24/data/yes24_ai.csv",
		OutputDir: "yes24/data",
		Bins:      20,
	}
}

// Validate ensures the report settings are usable.
func (c *ReportConfig) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("input file cannot be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.Bins <= 0 {
		return fmt.Errorf("histogram bins must be positive")
	}
	return nil
}
