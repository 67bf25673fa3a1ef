// Package report renders the exploratory charts and summaries of a
// collected book table.
package report

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aluiziolira/go-scrape-yes24/config"
	"github.com/aluiziolira/go-scrape-yes24/models"
)

// ErrNoRecords is returned by Run for an empty table.
var ErrNoRecords = errors.New("no records to report")

// Chart output file names.
const (
	PublisherCountsFile   = "publisher_counts.png"
	PriceDistributionFile = "price_distribution.png"
	RatingReviewFile      = "rating_review_relation.png"
	WordCloudFile         = "title_wordcloud.png"
	CorrelationFile       = "correlation_heatmap.png"
)

type chart struct {
	name   string
	file   string
	render func(books []models.Book, path string) error
}

func charts(cfg *config.ReportConfig) []chart {
	return []chart{
		{"publisher counts", PublisherCountsFile, renderPublisherCounts},
		{"price distribution", PriceDistributionFile, func(books []models.Book, path string) error {
			return renderPriceDistribution(books, cfg.Bins, path)
		}},
		{"rating vs reviews", RatingReviewFile, renderRatingReviews},
		{"title word cloud", WordCloudFile, renderWordCloud},
		{"correlation heatmap", CorrelationFile, renderCorrelationHeatmap},
	}
}

// Run writes every chart into cfg.OutputDir and returns the paths written.
// Charts are independent: a failing chart is logged, the rest are still
// drawn, and the failures come back joined.
func Run(books []models.Book, cfg *config.ReportConfig) ([]string, error) {
	if len(books) == 0 {
		return nil, ErrNoRecords
	}
	if cfg.FontFile != "" {
		if err := RegisterFont(cfg.FontFile); err != nil {
			return nil, err
		}
		slog.Debug("chart font registered", slog.String("font", cfg.FontFile))
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var (
		written []string
		errs    []error
	)
	for _, c := range charts(cfg) {
		path := filepath.Join(cfg.OutputDir, c.file)
		if err := renderChart(c, books, path); err != nil {
			slog.Error("chart failed", slog.String("chart", c.name), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		slog.Info("chart written", slog.String("chart", c.name), slog.String("path", path))
		written = append(written, path)
	}
	return written, errors.Join(errs...)
}

// renderChart turns a panic inside the plotting library into an error so one
// chart cannot take the others down.
func renderChart(c chart, books []models.Book, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()
	return c.render(books, path)
}
