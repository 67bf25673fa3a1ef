// Package models defines data structures for the scraper.
package models

import "time"

// NotAvailable is the placeholder stored in text fields that were missing from the listing.
const NotAvailable = "N/A"

// Columns is the ordered header of the output table.
var Columns = []string{
	"title",
	"author",
	"publisher",
	"publication_date",
	"original_price",
	"sale_price",
	"sale_index",
	"review_count",
	"rating",
	"image_url",
	"book_url",
}

// Book represents one listed book extracted from a category page.
type Book struct {
	Title           string  `csv:"title" json:"title"`
	Author          string  `csv:"author" json:"author"`
	Publisher       string  `csv:"publisher" json:"publisher"`
	PublicationDate string  `csv:"publication_date" json:"publication_date"`
	OriginalPrice   int     `csv:"original_price" json:"original_price"`
	SalePrice       int     `csv:"sale_price" json:"sale_price"`
	SaleIndex       int     `csv:"sale_index" json:"sale_index"`
	ReviewCount     int     `csv:"review_count" json:"review_count"`
	Rating          float64 `csv:"rating" json:"rating"`
	ImageURL        string  `csv:"image_url" json:"image_url"`
	BookURL         string  `csv:"book_url" json:"book_url"`
}

// DefaultBook returns the record produced for an item with no extractable fields.
func DefaultBook() Book {
	return Book{
		Title:           NotAvailable,
		Author:          NotAvailable,
		Publisher:       NotAvailable,
		PublicationDate: NotAvailable,
		ImageURL:        NotAvailable,
		BookURL:         NotAvailable,
	}
}

// IsDefault reports whether every field still holds its default value.
func (b Book) IsDefault() bool {
	return b == DefaultBook()
}

// Reasons a collection run stopped.
const (
	StopMaxPages    = "max_pages"
	StopEndOfData   = "end_of_data"
	StopInterrupted = "interrupted"
)

// ScraperResult holds the overall result of a collection run.
type ScraperResult struct {
	StartTime      time.Time
	EndTime        time.Time
	CategoryID     string
	TotalCount     int
	DefaultCount   int
	PagesRequested int
	PageCount      int
	FailedPages    []int
	EmptyPage      int // page that signalled end-of-data, 0 when none did
	StopReason     string
	ErrorCount     int
	ErrorsByType   map[string]int
	RetryCount     int
	RequestCount   int
}
