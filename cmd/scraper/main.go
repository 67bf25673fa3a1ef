package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-scrape-yes24/config"
	"github.com/aluiziolira/go-scrape-yes24/models"
	"github.com/aluiziolira/go-scrape-yes24/pipeline"
	"github.com/aluiziolira/go-scrape-yes24/scraper"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	defaults := config.DefaultConfig()
	configPath := flag.String("config", "", "YAML configuration file (overrides SCRAPER_CONFIG)")
	baseURL := flag.String("base-url", defaults.BaseURL, "Site origin")
	category := flag.String("category", defaults.CategoryID, "Numeric category id to list")
	maxPages := flag.Int("pages", defaults.MaxPages, "Number of listing pages to request")
	pageSize := flag.Int("page-size", defaults.PageSize, "Items per listing page")
	timeout := flag.Duration("timeout", defaults.Timeout, "Per-request timeout")
	maxRetries := flag.Int("max-retries", defaults.MaxRetries, "Retry attempts per page for transient errors")
	retryBackoff := flag.Duration("retry-backoff", defaults.RetryBackoff, "Initial retry backoff")
	retryBackoffMax := flag.Duration("retry-backoff-max", defaults.RetryBackoffMax, "Maximum retry backoff")
	outputFile := flag.String("output", defaults.OutputFile, "Output file path")
	outputFormat := flag.String("format", defaults.OutputFormat, "Output format: csv, json, xlsx, or all")
	userAgent := flag.String("user-agent", defaults.UserAgent, "User-Agent header sent with every request")
	metricsAddr := flag.String("metrics-addr", defaults.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", defaults.Verbose, "Enable verbose logging")

	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath == "" {
		*configPath, _ = config.EnvString("SCRAPER_CONFIG")
	}
	if *configPath != "" {
		if err := config.LoadFile(*configPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	// Only flags given on the command line win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "base-url":
			cfg.BaseURL = *baseURL
		case "category":
			cfg.CategoryID = *category
		case "pages":
			cfg.MaxPages = *maxPages
		case "page-size":
			cfg.PageSize = *pageSize
		case "timeout":
			cfg.Timeout = *timeout
		case "max-retries":
			cfg.MaxRetries = *maxRetries
		case "retry-backoff":
			cfg.RetryBackoff = *retryBackoff
		case "retry-backoff-max":
			cfg.RetryBackoffMax = *retryBackoffMax
		case "output":
			cfg.OutputFile = *outputFile
		case "format":
			cfg.OutputFormat = strings.ToLower(*outputFormat)
		case "user-agent":
			cfg.UserAgent = *userAgent
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "v":
			cfg.Verbose = *verbose
		}
	})

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting collection",
		slog.String("category", cfg.CategoryID),
		slog.Int("pages", cfg.MaxPages),
		slog.Int("page_size", cfg.PageSize),
	)

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsServer := startMetricsServer(cfg.MetricsAddr, s.Metrics)

	books, result, err := s.Run(ctx)
	stopMetricsServer(metricsServer)
	if errors.Is(err, scraper.ErrNoRecords) {
		slog.Error("nothing collected, no output written",
			slog.String("stop_reason", result.StopReason),
			slog.Int("failed_pages", len(result.FailedPages)),
		)
		os.Exit(1)
	}
	if err != nil {
		slog.Error("collection failed", slog.Any("error", err))
		os.Exit(1)
	}

	writer, err := pipeline.NewWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}
	p := pipeline.NewPipeline(writer)
	if err := p.Save(books); err != nil {
		p.Close()
		slog.Error("saving records failed", slog.Any("error", err))
		os.Exit(1)
	}
	if err := p.Close(); err != nil {
		slog.Error("closing output failed", slog.Any("error", err))
		os.Exit(1)
	}
	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := p.GetMetrics()
	if audit, ok := metrics["audit"].(map[string]int); ok && audit["default_record"] > 0 {
		slog.Warn("output contains placeholder records", slog.Int("default_records", audit["default_record"]))
	}

	printSummary(result, pipeline.OutputFiles(cfg.OutputFormat, cfg.OutputFile), metrics)
}

func startMetricsServer(addr string, m *scraper.Metrics) *http.Server {
	if addr == "" || m == nil {
		return nil
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", addr))
	return srv
}

func stopMetricsServer(srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("metrics server shutdown failed", slog.Any("error", err))
	}
}

func printSummary(result *models.ScraperResult, files []string, metrics map[string]interface{}) {
	duration := result.EndTime.Sub(result.StartTime)
	itemsPerSec := 0.0
	if duration.Seconds() > 0 {
		itemsPerSec = float64(result.TotalCount) / duration.Seconds()
	}
	successRate := 0.0
	if result.RequestCount > 0 {
		successRate = float64(result.RequestCount-result.ErrorCount) / float64(result.RequestCount) * 100
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Collection complete")
	t.AppendRow(table.Row{"Category", result.CategoryID})
	t.AppendRow(table.Row{"Records", result.TotalCount})
	t.AppendRow(table.Row{"Placeholder records", result.DefaultCount})
	t.AppendRow(table.Row{"Pages", fmt.Sprintf("%d/%d", result.PageCount, result.PagesRequested)})
	t.AppendRow(table.Row{"Stop reason", result.StopReason})
	if len(result.FailedPages) > 0 {
		t.AppendRow(table.Row{"Failed pages", fmt.Sprint(result.FailedPages)})
	}
	t.AppendRow(table.Row{"Requests", result.RequestCount})
	t.AppendRow(table.Row{"Success rate", fmt.Sprintf("%.2f%%", successRate)})
	t.AppendRow(table.Row{"Retries", result.RetryCount})
	t.AppendRow(table.Row{"Errors", result.ErrorCount})
	for _, kind := range sortedKeys(result.ErrorsByType) {
		t.AppendRow(table.Row{"  " + kind, result.ErrorsByType[kind]})
	}
	if audit, ok := metrics["audit"].(map[string]int); ok {
		for _, kind := range sortedKeys(audit) {
			t.AppendRow(table.Row{"Audit " + kind, audit[kind]})
		}
	}
	t.AppendRow(table.Row{"Duration", duration.Round(time.Millisecond)})
	t.AppendRow(table.Row{"Items/sec", fmt.Sprintf("%.2f", itemsPerSec)})
	for _, f := range files {
		t.AppendRow(table.Row{"Output", f})
	}
	t.Render()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
