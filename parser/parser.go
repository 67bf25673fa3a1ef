package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aluiziolira/go-scrape-yes24/models"
)

// SiteOrigin is prefixed to the relative product links found on listing pages.
const SiteOrigin = "https://www.yes24.com"

// authorMarker is the authorship suffix yes24 appends to the author list ("저" = written by).
const authorMarker = "저"

var (
	saleIndexPattern   = regexp.MustCompile(`\d[\d,]*`)
	reviewCountPattern = regexp.MustCompile(`\d+`)
)

// ParsePrice removes thousands separators and parses the remaining digits.
// Text that is not a non-negative integer yields 0.
func ParsePrice(text string) int {
	return atoiOrZero(strings.ReplaceAll(strings.TrimSpace(text), ",", ""))
}

// ParseSaleIndex extracts the first digit group (separators allowed) from text
// such as "판매지수 1,234위".
func ParseSaleIndex(text string) int {
	match := saleIndexPattern.FindString(text)
	if match == "" {
		return 0
	}
	return atoiOrZero(strings.ReplaceAll(match, ",", ""))
}

// ParseReviewCount extracts the first run of digits from text such as "리뷰 42개".
func ParseReviewCount(text string) int {
	return atoiOrZero(reviewCountPattern.FindString(text))
}

// ParseRating parses the rating text as a float. Unparseable text yields 0.
func ParseRating(text string) float64 {
	rating, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) {
		return 0
	}
	return rating
}

// CleanAuthor trims the author text and drops a trailing authorship marker token.
func CleanAuthor(text string) string {
	author := strings.TrimSpace(text)
	rest, found := strings.CutSuffix(author, authorMarker)
	if !found || rest == "" {
		return author
	}
	if last, _ := utf8.DecodeLastRuneInString(rest); !unicode.IsSpace(last) {
		return author
	}
	return strings.TrimSpace(rest)
}

// BookURL joins the site origin with a relative product path.
func BookURL(origin, href string) string {
	return origin + href
}

// MissingFields lists the columns of b that still hold their default value.
func MissingFields(b models.Book) []string {
	def := models.DefaultBook()
	var missing []string
	check := func(column string, isDefault bool) {
		if isDefault {
			missing = append(missing, column)
		}
	}
	check("title", b.Title == def.Title)
	check("author", b.Author == def.Author)
	check("publisher", b.Publisher == def.Publisher)
	check("publication_date", b.PublicationDate == def.PublicationDate)
	check("original_price", b.OriginalPrice == def.OriginalPrice)
	check("sale_price", b.SalePrice == def.SalePrice)
	check("sale_index", b.SaleIndex == def.SaleIndex)
	check("review_count", b.ReviewCount == def.ReviewCount)
	check("rating", b.Rating == def.Rating)
	check("image_url", b.ImageURL == def.ImageURL)
	check("book_url", b.BookURL == def.BookURL)
	return missing
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
