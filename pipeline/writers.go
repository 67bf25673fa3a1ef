package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/aluiziolira/go-scrape-yes24/config"
	"github.com/aluiziolira/go-scrape-yes24/models"
)

// utf8BOM lets spreadsheet tools detect the encoding of the Korean text.
const utf8BOM = "\ufeff"

// NewWriter returns the writer for format. For "all", the CSV goes to filename
// and the JSONL and XLSX copies sit next to it with their own extensions.
func NewWriter(format, filename string) (OutputWriter, error) {
	switch strings.ToLower(format) {
	case config.FormatCSV:
		return NewCSVWriter(filename)
	case config.FormatJSON:
		return NewJSONWriter(withExt(filename, ".jsonl"))
	case config.FormatXLSX:
		return NewXLSXWriter(withExt(filename, ".xlsx")), nil
	case config.FormatAll:
		csvWriter, err := NewCSVWriter(filename)
		if err != nil {
			return nil, err
		}
		jsonWriter, err := NewJSONWriter(withExt(filename, ".jsonl"))
		if err != nil {
			csvWriter.Close()
			return nil, err
		}
		return NewMultiWriter(csvWriter, jsonWriter, NewXLSXWriter(withExt(filename, ".xlsx"))), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// OutputFiles lists the files NewWriter produces for format.
func OutputFiles(format, filename string) []string {
	switch strings.ToLower(format) {
	case config.FormatJSON:
		return []string{withExt(filename, ".jsonl")}
	case config.FormatXLSX:
		return []string{withExt(filename, ".xlsx")}
	case config.FormatAll:
		return []string{filename, withExt(filename, ".jsonl"), withExt(filename, ".xlsx")}
	default:
		return []string{filename}
	}
}

func withExt(filename, ext string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
}

// bookRecord renders b in models.Columns order.
func bookRecord(b models.Book) []string {
	return []string{
		b.Title,
		b.Author,
		b.Publisher,
		b.PublicationDate,
		strconv.Itoa(b.OriginalPrice),
		strconv.Itoa(b.SalePrice),
		strconv.Itoa(b.SaleIndex),
		strconv.Itoa(b.ReviewCount),
		strconv.FormatFloat(b.Rating, 'f', -1, 64),
		b.ImageURL,
		b.BookURL,
	}
}

// CSVWriter writes records to a BOM-prefixed UTF-8 CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	rows   int
	mu     sync.Mutex
}

// NewCSVWriter initialises a CSV writer and writes the BOM and header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}
	if _, err := f.WriteString(utf8BOM); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv bom: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(models.Columns); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		file:   f,
		writer: writer,
	}, nil
}

// Write appends books to the CSV output.
func (cw *CSVWriter) Write(books []models.Book) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, book := range books {
		if err := cw.writer.Write(bookRecord(book)); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
		cw.rows++
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures at least one record follows the header.
func (cw *CSVWriter) Validate() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.rows == 0 {
		return fmt.Errorf("csv file %s has no records", cw.file.Name())
	}
	return nil
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	rows    int
	mu      sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	return &JSONWriter{
		file:    f,
		writer:  buffer,
		encoder: encoder,
	}, nil
}

// Write appends books in JSONL format.
func (jw *JSONWriter) Write(books []models.Book) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, book := range books {
		if err := jw.encoder.Encode(book); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
		jw.rows++
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}

	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	if jw.rows == 0 {
		return fmt.Errorf("json file %s has no records", jw.file.Name())
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
