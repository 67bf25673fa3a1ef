package report

import (
	"bytes"
	"image"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/aluiziolira/go-scrape-yes24/config"
	"github.com/aluiziolira/go-scrape-yes24/models"
)

func fixtureBooks() []models.Book {
	mk := func(title, publisher string, original, sale, index, reviews int, rating float64) models.Book {
		b := models.DefaultBook()
		b.Title = title
		b.Author = "저자"
		b.Publisher = publisher
		b.PublicationDate = "2024년 01월"
		b.OriginalPrice = original
		b.SalePrice = sale
		b.SaleIndex = index
		b.ReviewCount = reviews
		b.Rating = rating
		b.BookURL = "https://www.yes24.com/product/goods/" + title
		return b
	}
	return []models.Book{
		mk("Deep Learning from Scratch", "한빛미디어", 24000, 21600, 90000, 320, 9.8),
		mk("Hands-On Machine Learning", "한빛미디어", 55000, 49500, 45000, 120, 9.6),
		mk("Python Machine Learning", "길벗", 36000, 32400, 30000, 80, 9.4),
		mk("LLM Engineering", "위키북스", 32000, 28800, 12000, 15, 9.0),
		mk("Deep Learning Basics", "길벗", 28000, 25200, 8000, 10, 8.8),
		mk("Prompt Engineering Guide", "한빛미디어", 22000, 19800, 5000, 3, 10.0),
		mk("Learning Transformers", "제이펍", 30000, 27000, 2500, 0, 0),
	}
}

func TestPublisherCounts(t *testing.T) {
	counts := PublisherCounts(fixtureBooks())

	require.Len(t, counts, 4)
	assert.Equal(t, Count{Label: "한빛미디어", N: 3}, counts[0])
	assert.Equal(t, Count{Label: "길벗", N: 2}, counts[1])
	// ties break by name
	assert.Equal(t, "위키북스", counts[2].Label)
	assert.Equal(t, "제이펍", counts[3].Label)
}

func TestPublisherCountsSkipsPlaceholder(t *testing.T) {
	books := append(fixtureBooks(), models.DefaultBook(), models.DefaultBook())
	books[0].Publisher = models.NotAvailable

	counts := PublisherCounts(books)

	require.Len(t, counts, 4)
	assert.Equal(t, Count{Label: "길벗", N: 2}, counts[0])
	assert.Equal(t, Count{Label: "한빛미디어", N: 2}, counts[1])
	for _, c := range counts {
		assert.NotEqual(t, models.NotAvailable, c.Label)
	}
}

func TestPublisherChartNeedsAPublisher(t *testing.T) {
	books := []models.Book{models.DefaultBook(), models.DefaultBook()}

	err := renderPublisherCounts(books, filepath.Join(t.TempDir(), PublisherCountsFile))
	assert.ErrorContains(t, err, "publisher")
}

func TestCorrelation(t *testing.T) {
	books := []models.Book{
		{OriginalPrice: 10, SalePrice: 9, SaleIndex: 300, ReviewCount: 1, Rating: 5},
		{OriginalPrice: 20, SalePrice: 18, SaleIndex: 200, ReviewCount: 7, Rating: 5},
		{OriginalPrice: 30, SalePrice: 27, SaleIndex: 100, ReviewCount: 2, Rating: 5},
	}

	m := Correlation(books)
	require.Len(t, m, len(NumericColumns))

	assert.InDelta(t, 1.0, m[0][1], 1e-9, "original vs sale price")
	assert.InDelta(t, -1.0, m[0][2], 1e-9, "original price vs sale index")
	assert.InDelta(t, 1.0, m[3][3], 1e-9)
	assert.InDelta(t, m[1][3], m[3][1], 1e-12, "matrix is symmetric")
	assert.True(t, math.IsNaN(m[4][4]), "constant rating has no correlation")
	assert.True(t, math.IsNaN(m[0][4]))
}

func TestTitleWords(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{name: "korean", title: "파이썬 머신러닝 완벽 가이드 (개정2판)", want: []string{"파이썬", "머신러닝", "완벽", "가이드", "개정2판"}},
		{name: "decomposed hangul", title: "\u1112\u1161\u11ab\u1100\u116e\u11a8 AI", want: []string{"한국", "ai"}},
		{name: "english stopwords", title: "The Art of Deep Learning, 2nd Ed.", want: []string{"art", "deep", "learning", "2nd"}},
		{name: "single runes dropped", title: "C 언어 & R", want: []string{"언어"}},
		{name: "placeholder", title: models.NotAvailable, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleWords(tt.title))
		})
	}
}

func TestWordFrequencies(t *testing.T) {
	freq := WordFrequencies(fixtureBooks())

	require.NotEmpty(t, freq)
	assert.Equal(t, WordCount{Word: "learning", Count: 5}, freq[0])
	for i := 1; i < len(freq); i++ {
		assert.GreaterOrEqual(t, freq[i-1].Count, freq[i].Count)
	}
}

func TestDescribe(t *testing.T) {
	books := make([]models.Book, 5)
	for i := range books {
		books[i].SalePrice = (i + 1) * 1000
	}

	var sale Summary
	for _, s := range Describe(books) {
		if s.Column == "sale_price" {
			sale = s
		}
	}

	assert.Equal(t, 5, sale.Count)
	assert.InDelta(t, 3000, sale.Mean, 1e-9)
	assert.InDelta(t, 1581.1388, sale.Std, 1e-3)
	assert.Equal(t, 1000.0, sale.Min)
	assert.Equal(t, 2000.0, sale.Q25)
	assert.Equal(t, 3000.0, sale.Median)
	assert.Equal(t, 4000.0, sale.Q75)
	assert.Equal(t, 5000.0, sale.Max)
}

func TestMissingValues(t *testing.T) {
	counts := MissingValues(fixtureBooks())

	byColumn := make(map[string]int)
	for _, c := range counts {
		byColumn[c.Label] = c.N
	}
	assert.Len(t, counts, len(models.Columns))
	assert.Equal(t, 7, byColumn["image_url"])
	assert.Equal(t, 0, byColumn["title"])
	// numeric zeros are values, not gaps
	assert.Equal(t, 0, byColumn["rating"])
	assert.Equal(t, 0, byColumn["review_count"])
}

func TestMissingValuesCountsPlaceholderText(t *testing.T) {
	books := fixtureBooks()
	books[1].Publisher = models.NotAvailable
	books[4].Publisher = models.NotAvailable
	books[4].Author = models.NotAvailable
	books = append(books, models.DefaultBook())

	byColumn := make(map[string]int)
	for _, c := range MissingValues(books) {
		byColumn[c.Label] = c.N
	}
	assert.Equal(t, 3, byColumn["publisher"])
	assert.Equal(t, 2, byColumn["author"])
	assert.Equal(t, 1, byColumn["title"])
	assert.Equal(t, 8, byColumn["image_url"])
	assert.Equal(t, 0, byColumn["sale_price"])
}

func TestLayoutWordsStaysInsideWithoutOverlap(t *testing.T) {
	measure := func(word string, size vg.Length) (vg.Length, vg.Length, vg.Length) {
		return vg.Length(len([]rune(word))) * size * 0.6, size * 0.8, size * 0.2
	}
	words := []WordCount{{"learning", 40}, {"deep", 25}, {"machine", 20}, {"python", 9}}
	for i := 0; i < 60; i++ {
		words = append(words, WordCount{Word: strings.Repeat("w", 3+i%6), Count: 1 + i%4})
	}
	w, h := vg.Length(600), vg.Length(300)

	placed := layoutWords(words, w, h, measure)

	require.NotEmpty(t, placed)
	assert.Equal(t, "learning", placed[0].Word)
	assert.Equal(t, cloudMaxSize, placed[0].Size)
	for i, a := range placed {
		assert.GreaterOrEqual(t, float64(a.Box.Min.X), 0.0)
		assert.GreaterOrEqual(t, float64(a.Box.Min.Y), 0.0)
		assert.LessOrEqual(t, float64(a.Box.Max.X), float64(w))
		assert.LessOrEqual(t, float64(a.Box.Max.Y), float64(h))
		for _, b := range placed[i+1:] {
			overlap := a.Box.Min.X < b.Box.Max.X && b.Box.Min.X < a.Box.Max.X &&
				a.Box.Min.Y < b.Box.Max.Y && b.Box.Min.Y < a.Box.Max.Y
			assert.False(t, overlap, "%q overlaps %q", a.Word, b.Word)
		}
	}
}

func TestRunWritesEveryChart(t *testing.T) {
	cfg := config.DefaultReportConfig()
	cfg.OutputDir = filepath.Join(t.TempDir(), "charts")

	written, err := Run(fixtureBooks(), cfg)
	require.NoError(t, err)
	require.Len(t, written, 5)

	for _, name := range []string{PublisherCountsFile, PriceDistributionFile, RatingReviewFile, WordCloudFile, CorrelationFile} {
		f, err := os.Open(filepath.Join(cfg.OutputDir, name))
		require.NoError(t, err, name)
		imgCfg, format, err := image.DecodeConfig(f)
		f.Close()
		require.NoError(t, err, name)
		assert.Equal(t, "png", format, name)
		if name == WordCloudFile {
			assert.Equal(t, cloudWidthPx, imgCfg.Width)
			assert.Equal(t, cloudHeightPx, imgCfg.Height)
		}
	}
}

func TestRunKeepsGoingWhenOneChartFails(t *testing.T) {
	cfg := config.DefaultReportConfig()
	cfg.OutputDir = t.TempDir()
	cfg.Bins = 0

	written, err := Run(fixtureBooks(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price distribution")
	assert.Len(t, written, 4)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, PriceDistributionFile))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, CorrelationFile))
}

func TestRunWithoutRecords(t *testing.T) {
	cfg := config.DefaultReportConfig()
	cfg.OutputDir = t.TempDir()

	_, err := Run(nil, cfg)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestRunRejectsUnreadableFont(t *testing.T) {
	cfg := config.DefaultReportConfig()
	cfg.OutputDir = t.TempDir()
	cfg.FontFile = filepath.Join(t.TempDir(), "missing.ttf")

	_, err := Run(fixtureBooks(), cfg)
	assert.ErrorContains(t, err, "read font file")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, fixtureBooks())

	out := buf.String()
	for _, want := range []string{"Shape", "Columns", "First 5 rows", "Describe", "sale_price", "한빛미디어"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Learning Transformers", "only the first rows are previewed")
}
