package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvString returns the trimmed value of key when it is set and non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer. A set but malformed value is an error.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}

// EnvBool parses key with strconv.ParseBool.
func EnvBool(key string) (bool, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", key, err)
	}
	return b, true, nil
}

// ApplyEnv overlays the SCRAPER_* variables onto c.
func ApplyEnv(c *Config) error {
	if value, ok := EnvString("SCRAPER_CATEGORY"); ok {
		c.CategoryID = value
	}
	if value, ok, err := EnvInt("SCRAPER_PAGES"); err != nil {
		return err
	} else if ok {
		c.MaxPages = value
	}
	if value, ok, err := EnvInt("SCRAPER_PAGE_SIZE"); err != nil {
		return err
	} else if ok {
		c.PageSize = value
	}
	if value, ok := EnvString("SCRAPER_OUTPUT"); ok {
		c.OutputFile = value
	}
	if value, ok := EnvString("SCRAPER_FORMAT"); ok {
		c.OutputFormat = strings.ToLower(value)
	}
	if value, ok := EnvString("SCRAPER_METRICS_ADDR"); ok {
		c.MetricsAddr = value
	}
	if value, ok, err := EnvBool("SCRAPER_VERBOSE"); err != nil {
		return err
	} else if ok {
		c.Verbose = value
	}
	return nil
}

// ApplyReportEnv overlays the REPORT_* variables onto c.
func ApplyReportEnv(c *ReportConfig) error {
	if value, ok := EnvString("REPORT_INPUT"); ok {
		c.InputFile = value
	}
	if value, ok := EnvString("REPORT_OUTPUT_DIR"); ok {
		c.OutputDir = value
	}
	if value, ok := EnvString("REPORT_FONT"); ok {
		c.FontFile = value
	}
	if value, ok, err := EnvInt("REPORT_BINS"); err != nil {
		return err
	} else if ok {
		c.Bins = value
	}
	return nil
}
