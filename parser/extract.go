// Package parser turns yes24 category listing markup into book records.
package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-yes24/models"
)

// ItemSelector matches one listed product on a category page.
const ItemSelector = "div.itemUnit"

// Fragment is the markup of a single listed item.
type Fragment interface {
	// Text returns the text of the first descendant matching selector.
	Text(selector string) (string, bool)
	// Attr returns attribute name of the first descendant matching selector.
	Attr(selector, name string) (string, bool)
}

type selectionFragment struct {
	sel *goquery.Selection
}

// FromSelection adapts a goquery selection to a Fragment.
func FromSelection(sel *goquery.Selection) Fragment {
	return selectionFragment{sel: sel}
}

func (f selectionFragment) Text(selector string) (string, bool) {
	match := f.sel.Find(selector).First()
	if match.Length() == 0 {
		return "", false
	}
	return match.Text(), true
}

func (f selectionFragment) Attr(selector, name string) (string, bool) {
	match := f.sel.Find(selector).First()
	if match.Length() == 0 {
		return "", false
	}
	return match.Attr(name)
}

// fieldRule extracts one column. When the selector (or attribute) does not
// resolve, set is skipped and the DefaultBook value stays in place.
type fieldRule struct {
	column   string
	selector string
	attr     string
	set      func(b *models.Book, raw string)
}

func (r fieldRule) lookup(f Fragment) (string, bool) {
	if r.attr != "" {
		return f.Attr(r.selector, r.attr)
	}
	return f.Text(r.selector)
}

var fieldRules = []fieldRule{
	{column: "title", selector: ".gd_name", set: func(b *models.Book, raw string) {
		b.Title = strings.TrimSpace(raw)
	}},
	{column: "author", selector: ".info_auth", set: func(b *models.Book, raw string) {
		b.Author = CleanAuthor(raw)
	}},
	{column: "publisher", selector: ".info_pub", set: func(b *models.Book, raw string) {
		b.Publisher = strings.TrimSpace(raw)
	}},
	{column: "publication_date", selector: ".info_date", set: func(b *models.Book, raw string) {
		b.PublicationDate = strings.TrimSpace(raw)
	}},
	{column: "original_price", selector: ".info_price .txt_num.dash em", set: func(b *models.Book, raw string) {
		b.OriginalPrice = ParsePrice(raw)
	}},
	{column: "sale_price", selector: ".info_price .yes_b", set: func(b *models.Book, raw string) {
		b.SalePrice = ParsePrice(raw)
	}},
	{column: "sale_index", selector: ".saleNum", set: func(b *models.Book, raw string) {
		b.SaleIndex = ParseSaleIndex(raw)
	}},
	{column: "review_count", selector: ".rating_rvCount .txC_blue", set: func(b *models.Book, raw string) {
		b.ReviewCount = ParseReviewCount(raw)
	}},
	{column: "rating", selector: ".rating_grade .yes_b", set: func(b *models.Book, raw string) {
		b.Rating = ParseRating(raw)
	}},
	{column: "image_url", selector: ".lazy", attr: "data-original", set: func(b *models.Book, raw string) {
		b.ImageURL = raw
	}},
	{column: "book_url", selector: ".gd_name", attr: "href", set: func(b *models.Book, raw string) {
		b.BookURL = BookURL(SiteOrigin, raw)
	}},
}

// ExtractBook maps one listing item to a Book. It never fails: every field
// that cannot be found keeps its default. An item with nothing extractable
// still produces a record made entirely of defaults.
func ExtractBook(f Fragment) models.Book {
	book := models.DefaultBook()
	for _, rule := range fieldRules {
		raw, ok := rule.lookup(f)
		if !ok {
			continue
		}
		rule.set(&book, raw)
	}
	return book
}

// ParsePage extracts every listing item of a category page, in document order.
func ParsePage(r io.Reader) ([]models.Book, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing markup: %w", err)
	}

	items := doc.Find(ItemSelector)
	books := make([]models.Book, 0, items.Length())
	items.Each(func(_ int, item *goquery.Selection) {
		books = append(books, ExtractBook(FromSelection(item)))
	})
	return books, nil
}
