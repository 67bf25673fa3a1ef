package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/aluiziolira/go-scrape-yes24/config"
	"github.com/aluiziolira/go-scrape-yes24/pipeline"
	"github.com/aluiziolira/go-scrape-yes24/report"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg := config.DefaultReportConfig()
	if err := config.ApplyReportEnv(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.InputFile, "input", cfg.InputFile, "CSV written by the scraper")
	flag.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Directory for the chart images")
	flag.StringVar(&cfg.FontFile, "font", cfg.FontFile, "TrueType/OpenType font used for chart text (needed for Hangul)")
	flag.IntVar(&cfg.Bins, "bins", cfg.Bins, "Histogram bins for the price distribution")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Enable verbose logging")
	flag.Parse()

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	books, err := pipeline.ReadCSV(cfg.InputFile)
	if errors.Is(err, pipeline.ErrInputNotFound) {
		slog.Error("input file not found, run the scraper first", slog.String("path", cfg.InputFile))
		os.Exit(1)
	}
	if err != nil {
		slog.Error("reading input failed", slog.Any("error", err))
		os.Exit(1)
	}

	report.PrintSummary(os.Stdout, books)

	written, err := report.Run(books, cfg)
	if err != nil {
		slog.Error("report incomplete", slog.Int("charts_written", len(written)), slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("report complete", slog.Int("charts_written", len(written)), slog.String("dir", cfg.OutputDir))
}
