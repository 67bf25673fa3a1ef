package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML layout. Absent keys leave the current value alone.
type fileConfig struct {
	BaseURL    *string `yaml:"base_url"`
	CategoryID *string `yaml:"category"`
	PageSize   *int    `yaml:"page_size"`
	MaxPages   *int    `yaml:"pages"`
	Timeout    *string `yaml:"timeout"`
	Retry      struct {
		Max        *int    `yaml:"max"`
		Backoff    *string `yaml:"backoff"`
		BackoffMax *string `yaml:"backoff_max"`
	} `yaml:"retry"`
	Output struct {
		File   *string `yaml:"file"`
		Format *string `yaml:"format"`
	} `yaml:"output"`
	UserAgent   *string `yaml:"user_agent"`
	MetricsAddr *string `yaml:"metrics_addr"`
	Verbose     *bool   `yaml:"verbose"`
}

// LoadFile overlays the YAML file at path onto c.
func LoadFile(path string, c *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	setString(&c.BaseURL, fc.BaseURL)
	setString(&c.CategoryID, fc.CategoryID)
	setInt(&c.PageSize, fc.PageSize)
	setInt(&c.MaxPages, fc.MaxPages)
	setInt(&c.MaxRetries, fc.Retry.Max)
	setString(&c.OutputFile, fc.Output.File)
	setString(&c.UserAgent, fc.UserAgent)
	setString(&c.MetricsAddr, fc.MetricsAddr)
	if fc.Output.Format != nil {
		c.OutputFormat = strings.ToLower(*fc.Output.Format)
	}
	if fc.Verbose != nil {
		c.Verbose = *fc.Verbose
	}

	durations := []struct {
		key string
		src *string
		dst *time.Duration
	}{
		{"timeout", fc.Timeout, &c.Timeout},
		{"retry.backoff", fc.Retry.Backoff, &c.RetryBackoff},
		{"retry.backoff_max", fc.Retry.BackoffMax, &c.RetryBackoffMax},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		parsed, err := time.ParseDuration(*d.src)
		if err != nil {
			return fmt.Errorf("config file %s: %s: %w", path, d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
