package pipeline

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/aluiziolira/go-scrape-yes24/models"
)

// ErrInputNotFound is returned by ReadCSV when the file does not exist.
var ErrInputNotFound = errors.New("input file not found")

// ReadCSV loads records written by CSVWriter. Columns are matched by header
// name, so their order in the file does not matter.
func ReadCSV(path string) ([]models.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	return DecodeCSV(f)
}

// DecodeCSV reads records from r, skipping a leading UTF-8 BOM.
func DecodeCSV(r io.Reader) ([]models.Book, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, []byte(utf8BOM)) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("skip bom: %w", err)
		}
	}

	reader := csv.NewReader(br)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv has no header row")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, column := range models.Columns {
		if _, ok := index[column]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", column)
		}
	}
	reader.FieldsPerRecord = len(header)

	var books []models.Book
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		line, _ := reader.FieldPos(0)

		row := rowReader{record: record, index: index, line: line}
		book := models.Book{
			Title:           row.text("title"),
			Author:          row.text("author"),
			Publisher:       row.text("publisher"),
			PublicationDate: row.text("publication_date"),
			OriginalPrice:   row.integer("original_price"),
			SalePrice:       row.integer("sale_price"),
			SaleIndex:       row.integer("sale_index"),
			ReviewCount:     row.integer("review_count"),
			Rating:          row.float("rating"),
			ImageURL:        row.text("image_url"),
			BookURL:         row.text("book_url"),
		}
		if row.err != nil {
			return nil, row.err
		}
		books = append(books, book)
	}
	return books, nil
}

// rowReader keeps the first conversion error of a record.
type rowReader struct {
	record []string
	index  map[string]int
	line   int
	err    error
}

func (r *rowReader) text(column string) string {
	return r.record[r.index[column]]
}

func (r *rowReader) integer(column string) int {
	n, err := strconv.Atoi(r.text(column))
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("line %d: column %s: %w", r.line, column, err)
	}
	return n
}

func (r *rowReader) float(column string) float64 {
	f, err := strconv.ParseFloat(r.text(column), 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("line %d: column %s: %w", r.line, column, err)
	}
	return f
}
