package report

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/aluiziolira/go-scrape-yes24/models"
)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "of": {}, "to": {}, "in": {},
	"on": {}, "an": {}, "by": {}, "from": {}, "vol": {}, "ed": {},
}

// TitleWords splits a title into lower-cased letter/digit tokens of at least
// two runes. Titles are NFC-normalised first so decomposed Hangul from the
// listing matches its composed form.
func TitleWords(title string) []string {
	if title == models.NotAvailable {
		return nil
	}
	separator := func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) }
	fields := strings.FieldsFunc(strings.ToLower(norm.NFC.String(title)), separator)

	words := fields[:0]
	for _, w := range fields {
		if utf8.RuneCountInString(w) < 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}

// WordCount is a title token with its frequency.
type WordCount struct {
	Word  string
	Count int
}

// WordFrequencies counts title tokens over all books, most frequent first.
func WordFrequencies(books []models.Book) []WordCount {
	freq := make(map[string]int)
	for _, b := range books {
		for _, w := range TitleWords(b.Title) {
			freq[w]++
		}
	}
	counts := sortedCounts(freq)
	out := make([]WordCount, len(counts))
	for i, c := range counts {
		out[i] = WordCount{Word: c.Label, Count: c.N}
	}
	return out
}
