package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-scrape-yes24/config"
)

const (
	listingPath = "/product/category/CategoryProductContents"
	displayPath = "/product/category/display/"

	ctxStart  = "start"
	ctxBody   = "body"
	ctxStatus = "status"
)

// Fetcher returns the raw listing markup of one category page.
type Fetcher interface {
	Fetch(ctx context.Context, categoryID string, page, size int) ([]byte, error)
}

// FetchStats summarises the traffic of a fetcher.
type FetchStats struct {
	Requests     int
	Retries      int
	ErrorsByType map[string]int
}

// Option customises an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTransport replaces the HTTP transport used by the collector.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *HTTPFetcher) {
		f.collector.WithTransport(rt)
	}
}

// WithMetrics records fetch metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(f *HTTPFetcher) {
		f.metrics = m
	}
}

// HTTPFetcher requests listing pages from the yes24 XHR endpoint, one at a time.
type HTTPFetcher struct {
	cfg       *config.Config
	baseURL   string
	host      string
	collector *colly.Collector
	retry     retryPolicy
	metrics   *Metrics

	mu           sync.Mutex
	requests     int
	retries      int
	errorsByType map[string]int
}

// NewHTTPFetcher builds a synchronous collector configured from cfg.
func NewHTTPFetcher(cfg *config.Config, opts ...Option) (*HTTPFetcher, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
	)
	// The same page URL is requested again on retry and on every run.
	collector.AllowURLRevisit = true
	collector.SetRequestTimeout(cfg.Timeout)
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	f := &HTTPFetcher{
		cfg:          cfg,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		host:         parsed.Host,
		collector:    collector,
		retry:        newRetryPolicy(cfg),
		errorsByType: make(map[string]int),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.configureHandlers()
	return f, nil
}

func (f *HTTPFetcher) configureHandlers() {
	f.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put(ctxStart, time.Now())
		f.mu.Lock()
		f.requests++
		f.mu.Unlock()
		f.metrics.IncRequest("started")
		slog.Debug("listing request", slog.String("url", r.URL.String()))
	})

	f.collector.OnResponse(func(r *colly.Response) {
		f.observe(r.Ctx)
		f.metrics.IncRequest("completed")
		r.Ctx.Put(ctxBody, r.Body)
	})

	f.collector.OnError(func(r *colly.Response, err error) {
		f.observe(r.Ctx)
		f.metrics.IncRequest("failed")
		r.Ctx.Put(ctxStatus, r.StatusCode)
	})
}

func (f *HTTPFetcher) observe(ctx *colly.Context) {
	if ctx == nil {
		return
	}
	if start, ok := ctx.GetAny(ctxStart).(time.Time); ok {
		f.metrics.ObserveDuration(time.Since(start))
	}
}

// ListingURL returns the endpoint URL for one page of a category.
func (f *HTTPFetcher) ListingURL(categoryID string, page, size int) string {
	query := url.Values{}
	query.Set("dispNo", categoryID)
	query.Set("order", "SINDEX_ONLY")
	query.Set("addOptionTp", "0")
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	query.Set("statGbYn", "N")
	query.Set("viewMode", "")
	query.Set("_options", "")
	query.Set("directDelvYn", "")
	query.Set("usedTp", "0")
	query.Set("elemNo", "0")
	query.Set("elemSeq", "0")
	query.Set("seriesNumber", "0")
	return f.baseURL + listingPath + "?" + query.Encode()
}

// headers mimics the browser XHR issued by the category page. A fresh map is
// built per request because colly keeps it as the request's header.
func (f *HTTPFetcher) headers(categoryID string) http.Header {
	h := http.Header{}
	h.Set("Host", f.host)
	h.Set("Referer", f.baseURL+displayPath+categoryID)
	h.Set("Sec-Ch-Ua", `"Not(A:Brand";v="8", "Chromium";v="144", "Google Chrome";v="144"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("User-Agent", f.cfg.UserAgent)
	h.Set("X-Requested-With", "XMLHttpRequest")
	return h
}

// Fetch requests one page, retrying transient failures when MaxRetries > 0.
// The returned error is one of the typed errors of this package, or ctx.Err().
func (f *HTTPFetcher) Fetch(ctx context.Context, categoryID string, page, size int) ([]byte, error) {
	target := f.ListingURL(categoryID, page, size)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := f.fetchOnce(target, categoryID)
		if err == nil {
			return body, nil
		}

		category := errorTypeLabel(err)
		f.mu.Lock()
		f.errorsByType[category]++
		f.mu.Unlock()
		f.metrics.IncError(category)

		if !f.retry.allow(attempt, err) {
			return nil, err
		}

		f.mu.Lock()
		f.retries++
		f.mu.Unlock()
		f.metrics.IncRetries()
		slog.Debug("retrying listing request",
			slog.Int("page", page),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", f.retry.backoff(attempt)),
			slog.String("category", category),
		)
		if err := f.retry.wait(ctx, attempt); err != nil {
			return nil, err
		}
	}
}

func (f *HTTPFetcher) fetchOnce(target, categoryID string) ([]byte, error) {
	reqCtx := colly.NewContext()
	err := f.collector.Request(http.MethodGet, target, nil, reqCtx, f.headers(categoryID))
	if err != nil {
		status, _ := reqCtx.GetAny(ctxStatus).(int)
		return nil, classifyError(err, status)
	}
	body, _ := reqCtx.GetAny(ctxBody).([]byte)
	return body, nil
}

// Stats returns a snapshot of the request counters.
func (f *HTTPFetcher) Stats() FetchStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.errorsByType))
	for k, v := range f.errorsByType {
		out[k] = v
	}
	return FetchStats{
		Requests:     f.requests,
		Retries:      f.retries,
		ErrorsByType: out,
	}
}
