package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/aluiziolira/go-scrape-yes24/models"
)

// NumericColumns are the columns summarised by Describe and Correlation.
var NumericColumns = []string{"original_price", "sale_price", "sale_index", "review_count", "rating"}

// TextColumns are the columns that carry models.NotAvailable when missing.
var TextColumns = []string{"title", "author", "publisher", "publication_date", "image_url", "book_url"}

// Column returns the values of a numeric column, in record order.
func Column(books []models.Book, name string) []float64 {
	values := make([]float64, len(books))
	for i, b := range books {
		switch name {
		case "original_price":
			values[i] = float64(b.OriginalPrice)
		case "sale_price":
			values[i] = float64(b.SalePrice)
		case "sale_index":
			values[i] = float64(b.SaleIndex)
		case "review_count":
			values[i] = float64(b.ReviewCount)
		case "rating":
			values[i] = b.Rating
		default:
			values[i] = math.NaN()
		}
	}
	return values
}

func textValue(b models.Book, name string) string {
	switch name {
	case "title":
		return b.Title
	case "author":
		return b.Author
	case "publisher":
		return b.Publisher
	case "publication_date":
		return b.PublicationDate
	case "image_url":
		return b.ImageURL
	case "book_url":
		return b.BookURL
	}
	return ""
}

// Count is a label with its number of occurrences.
type Count struct {
	Label string
	N     int
}

// PublisherCounts counts records per publisher, largest first. Ties are
// ordered by name so the chart is stable between runs. Records without a
// publisher are not counted.
func PublisherCounts(books []models.Book) []Count {
	byPublisher := make(map[string]int)
	for _, b := range books {
		if b.Publisher == models.NotAvailable {
			continue
		}
		byPublisher[b.Publisher]++
	}
	return sortedCounts(byPublisher)
}

func sortedCounts(m map[string]int) []Count {
	counts := make([]Count, 0, len(m))
	for label, n := range m {
		counts = append(counts, Count{Label: label, N: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].N != counts[j].N {
			return counts[i].N > counts[j].N
		}
		return counts[i].Label < counts[j].Label
	})
	return counts
}

// Correlation returns the Pearson matrix of NumericColumns. Entries involving a
// column without variance are NaN.
func Correlation(books []models.Book) [][]float64 {
	columns := make([][]float64, len(NumericColumns))
	constant := make([]bool, len(NumericColumns))
	for i, name := range NumericColumns {
		columns[i] = Column(books, name)
		constant[i] = len(books) < 2 || stat.StdDev(columns[i], nil) == 0
	}

	matrix := make([][]float64, len(NumericColumns))
	for i := range matrix {
		matrix[i] = make([]float64, len(NumericColumns))
		for j := range matrix[i] {
			switch {
			case constant[i] || constant[j]:
				matrix[i][j] = math.NaN()
			case i == j:
				matrix[i][j] = 1
			default:
				matrix[i][j] = stat.Correlation(columns[i], columns[j], nil)
			}
		}
	}
	return matrix
}

// Summary holds descriptive statistics of one numeric column.
type Summary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Describe summarises every numeric column. Std is the sample deviation.
func Describe(books []models.Book) []Summary {
	summaries := make([]Summary, 0, len(NumericColumns))
	for _, name := range NumericColumns {
		values := Column(books, name)
		s := Summary{Column: name, Count: len(values)}
		if len(values) == 0 {
			nan := math.NaN()
			s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
			summaries = append(summaries, s)
			continue
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		s.Mean = stat.Mean(sorted, nil)
		s.Std = math.NaN()
		if len(sorted) > 1 {
			s.Std = stat.StdDev(sorted, nil)
		}
		s.Min = sorted[0]
		s.Max = sorted[len(sorted)-1]
		s.Q25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
		s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		s.Q75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
		summaries = append(summaries, s)
	}
	return summaries
}

// MissingValues counts "N/A" entries per text column, in TextColumns order.
// Numeric columns always hold a value and are reported as zero.
func MissingValues(books []models.Book) []Count {
	counts := make([]Count, 0, len(models.Columns))
	missing := make(map[string]int, len(TextColumns))
	for _, b := range books {
		for _, name := range TextColumns {
			if textValue(b, name) == models.NotAvailable {
				missing[name]++
			}
		}
	}
	for _, name := range models.Columns {
		counts = append(counts, Count{Label: name, N: missing[name]})
	}
	return counts
}
