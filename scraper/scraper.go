// Package scraper walks the listing pages of one yes24 category.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-scrape-yes24/config"
	"github.com/aluiziolira/go-scrape-yes24/models"
	"github.com/aluiziolira/go-scrape-yes24/parser"
)

// Scraper drives page-by-page collection for the configured category.
type Scraper struct {
	cfg     *config.Config
	fetcher Fetcher
	Metrics *Metrics
}

// NewScraper builds a scraper backed by an HTTPFetcher configured from cfg.
func NewScraper(cfg *config.Config, opts ...Option) (*Scraper, error) {
	metrics := NewMetrics()
	fetcher, err := NewHTTPFetcher(cfg, append([]Option{WithMetrics(metrics)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Scraper{cfg: cfg, fetcher: fetcher, Metrics: metrics}, nil
}

// NewWithFetcher builds a scraper around any Fetcher. metrics may be nil.
func NewWithFetcher(cfg *config.Config, fetcher Fetcher, metrics *Metrics) *Scraper {
	return &Scraper{cfg: cfg, fetcher: fetcher, Metrics: metrics}
}

// Run collects pages 1..MaxPages in order and returns every record in page
// order. It returns ErrNoRecords, together with the run result, when nothing
// was collected.
func (s *Scraper) Run(ctx context.Context) ([]models.Book, *models.ScraperResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &models.ScraperResult{
		StartTime:    time.Now(),
		CategoryID:   s.cfg.CategoryID,
		StopReason:   models.StopMaxPages,
		ErrorsByType: make(map[string]int),
	}
	var books []models.Book

	for page := 1; page <= s.cfg.MaxPages; page++ {
		if ctx.Err() != nil {
			result.StopReason = models.StopInterrupted
			slog.Warn("collection interrupted", slog.Int("next_page", page))
			break
		}

		result.PagesRequested++
		pageBooks, err := s.collectPage(ctx, page)

		// A failed page is skipped and the walk goes on; an empty page ends
		// it. The two cases are intentionally not treated alike.
		if err != nil {
			if ctx.Err() != nil {
				result.StopReason = models.StopInterrupted
				slog.Warn("collection interrupted", slog.Int("page", page))
				break
			}
			category := errorTypeLabel(err)
			result.ErrorCount++
			result.ErrorsByType[category]++
			result.FailedPages = append(result.FailedPages, page)
			s.Metrics.IncPage(pageFailed)
			slog.Error("page fetch failed",
				slog.Int("page", page),
				slog.String("category", category),
				slog.Any("error", err),
			)
			continue
		}
		if len(pageBooks) == 0 {
			result.EmptyPage = page
			result.StopReason = models.StopEndOfData
			s.Metrics.IncPage(pageEmpty)
			slog.Warn("no listing items on page, stopping", slog.Int("page", page))
			break
		}

		defaults := 0
		for i, book := range pageBooks {
			if book.IsDefault() {
				defaults++
				slog.Warn("listing item yielded no fields",
					slog.Int("page", page),
					slog.Int("position", i+1),
				)
			}
		}
		result.DefaultCount += defaults
		result.PageCount++
		s.Metrics.IncPage(pageParsed)
		s.Metrics.AddItems(len(pageBooks), defaults)

		books = append(books, pageBooks...)
		slog.Info("page collected",
			slog.Int("page", page),
			slog.Int("items", len(pageBooks)),
			slog.Int("total", len(books)),
		)
	}

	if reporter, ok := s.fetcher.(interface{ Stats() FetchStats }); ok {
		stats := reporter.Stats()
		result.RequestCount = stats.Requests
		result.RetryCount = stats.Retries
	} else {
		result.RequestCount = result.PagesRequested
	}
	result.TotalCount = len(books)
	result.EndTime = time.Now()

	if len(books) == 0 {
		return nil, result, ErrNoRecords
	}
	return books, result, nil
}

func (s *Scraper) collectPage(ctx context.Context, page int) ([]models.Book, error) {
	body, err := s.fetcher.Fetch(ctx, s.cfg.CategoryID, page, s.cfg.PageSize)
	if err != nil {
		return nil, err
	}
	books, err := parser.ParsePage(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	return books, nil
}
