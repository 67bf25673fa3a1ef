// Package pipeline audits collected records and writes them to the output files.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-scrape-yes24/models"
	"github.com/aluiziolira/go-scrape-yes24/parser"
)

var (
	// ErrPipelineClosed is returned when Save is called after Close.
	ErrPipelineClosed = errors.New("pipeline: closed")
	// ErrAlreadySaved is returned by a second Save; output is written once per run.
	ErrAlreadySaved = errors.New("pipeline: records already saved")
)

// dedupeWindow bounds how many recent book URLs the duplicate audit remembers.
const dedupeWindow = 10000

// OutputWriter defines the interface for data output.
type OutputWriter interface {
	Write(books []models.Book) error
	Close() error
	Validate() error
}

// Pipeline audits the final record sequence and hands it to the writer in a
// single ordered Write.
type Pipeline struct {
	writer  OutputWriter
	metrics metrics

	mu     sync.Mutex // guards closed/saved
	closed bool
	saved  bool

	closeOnce sync.Once
	closeErr  error
}

// NewPipeline wraps writer.
func NewPipeline(writer OutputWriter) *Pipeline {
	return &Pipeline{
		writer:  writer,
		metrics: newMetrics(),
	}
}

// Save audits books and writes them, in order, with one call to the writer.
// Records are never dropped: all-default rows and repeated URLs are only counted.
func (p *Pipeline) Save(books []models.Book) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPipelineClosed
	}
	if p.saved {
		p.mu.Unlock()
		return ErrAlreadySaved
	}
	p.saved = true
	p.mu.Unlock()

	p.audit(books)

	if err := p.writer.Write(books); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	p.metrics.addWritten(len(books))
	return nil
}

func (p *Pipeline) audit(books []models.Book) {
	seen, err := lru.New[string, struct{}](dedupeWindow)
	if err != nil {
		slog.Warn("duplicate audit disabled", slog.Any("error", err))
	}
	for i, book := range books {
		if book.IsDefault() {
			p.metrics.addAudit("default_record")
			slog.Debug("saving all-default record", slog.Int("position", i+1))
			continue
		}
		for _, column := range parser.MissingFields(book) {
			p.metrics.addAudit("missing_" + column)
		}
		if seen == nil || book.BookURL == models.NotAvailable {
			continue
		}
		if seen.Contains(book.BookURL) {
			p.metrics.addAudit("duplicate_url")
			continue
		}
		seen.Add(book.BookURL, struct{}{})
	}
}

// Close closes the writer. It is safe to call more than once.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.closeOnce.Do(func() {
		p.closeErr = p.writer.Close()
	})
	return p.closeErr
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.metrics.snapshot()
}

type metrics struct {
	mu      sync.Mutex
	written int64
	audit   map[string]int
}

func newMetrics() metrics {
	return metrics{
		audit: make(map[string]int),
	}
}

func (m *metrics) addWritten(n int) {
	m.mu.Lock()
	m.written += int64(n)
	m.mu.Unlock()
}

func (m *metrics) addAudit(kind string) {
	m.mu.Lock()
	m.audit[kind]++
	m.mu.Unlock()
}

func (m *metrics) snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	copyAudit := make(map[string]int, len(m.audit))
	for k, v := range m.audit {
		copyAudit[k] = v
	}

	return map[string]interface{}{
		"written_books": m.written,
		"audit":         copyAudit,
	}
}
