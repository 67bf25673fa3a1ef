package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/aluiziolira/go-scrape-yes24/models"
)

var (
	originalPriceColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	salePriceColor     = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	publisherBarColor  = color.RGBA{R: 59, G: 82, B: 139, A: 255}
)

// Marker areas, in square points, for the smallest and largest sale index.
const (
	minMarkerArea = 20.0
	maxMarkerArea = 200.0
	legendLimit   = 12
)

func renderPublisherCounts(books []models.Book, path string) error {
	counts := PublisherCounts(books)
	n := len(counts)
	if n == 0 {
		return errors.New("no record has a publisher")
	}

	// Bars are drawn bottom-up, so reverse to put the largest publisher on top.
	values := make(plotter.Values, n)
	names := make([]string, n)
	for i, c := range counts {
		values[n-1-i] = float64(c.N)
		names[n-1-i] = c.Label
	}

	p := plot.New()
	p.Title.Text = "Books per publisher"
	p.X.Label.Text = "books"

	bars, err := plotter.NewBarChart(values, vg.Points(10))
	if err != nil {
		return err
	}
	bars.Horizontal = true
	bars.Color = publisherBarColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)

	height := vg.Length(n)*vg.Points(16) + 1.5*vg.Inch
	if height < 4*vg.Inch {
		height = 4 * vg.Inch
	}
	return p.Save(10*vg.Inch, height, path)
}

func renderPriceDistribution(books []models.Book, bins int, path string) error {
	if bins < 1 {
		return fmt.Errorf("histogram needs at least one bin, got %d", bins)
	}
	panels := []struct {
		column string
		title  string
		fill   color.Color
	}{
		{"original_price", "Original price", originalPriceColor},
		{"sale_price", "Sale price", salePriceColor},
	}

	plots := [][]*plot.Plot{make([]*plot.Plot, len(panels))}
	for i, panel := range panels {
		p := plot.New()
		p.Title.Text = panel.title
		p.X.Label.Text = "price (KRW)"
		p.Y.Label.Text = "books"

		hist, err := plotter.NewHist(plotter.Values(Column(books, panel.column)), bins)
		if err != nil {
			return fmt.Errorf("%s histogram: %w", panel.column, err)
		}
		hist.FillColor = panel.fill
		p.Add(hist)
		plots[0][i] = p
	}

	img := vgimg.New(14*vg.Inch, 5*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(panels),
		PadX:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots[0] {
		plots[0][j].Draw(canvases[0][j])
	}
	return savePNG(img, path)
}

func renderRatingReviews(books []models.Book, path string) error {
	saleIndex := Column(books, "sale_index")
	lo, hi := floats.Min(saleIndex), floats.Max(saleIndex)
	radius := func(idx float64) vg.Length {
		area := (minMarkerArea + maxMarkerArea) / 2
		if hi > lo {
			area = minMarkerArea + (idx-lo)/(hi-lo)*(maxMarkerArea-minMarkerArea)
		}
		return vg.Length(math.Sqrt(area / math.Pi))
	}

	groups := make(map[string][]int)
	for i, b := range books {
		groups[b.Publisher] = append(groups[b.Publisher], i)
	}

	p := plot.New()
	p.Title.Text = "Rating vs. review count"
	p.X.Label.Text = "rating"
	p.Y.Label.Text = "reviews"
	p.Legend.Top = true

	for gi, publisher := range PublisherCounts(books) {
		members := groups[publisher.Label]
		xys := make(plotter.XYs, len(members))
		radii := make([]vg.Length, len(members))
		for k, idx := range members {
			xys[k].X = books[idx].Rating
			xys[k].Y = float64(books[idx].ReviewCount)
			radii[k] = radius(saleIndex[idx])
		}

		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("scatter for %q: %w", publisher.Label, err)
		}
		fill := plotutil.Color(gi)
		scatter.GlyphStyle = draw.GlyphStyle{Color: fill, Radius: vg.Points(3), Shape: draw.CircleGlyph{}}
		scatter.GlyphStyleFunc = func(k int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: fill, Radius: radii[k], Shape: draw.CircleGlyph{}}
		}
		p.Add(scatter)
		if gi < legendLimit {
			p.Legend.Add(publisher.Label, scatter)
		}
	}
	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}

// correlationGrid exposes a correlation matrix as a heat map grid, first
// column at the top.
type correlationGrid [][]float64

func (g correlationGrid) Dims() (c, r int) { return len(g), len(g) }
func (g correlationGrid) Z(c, r int) float64 { return g[len(g)-1-r][c] }
func (g correlationGrid) X(c int) float64 { return float64(c) }
func (g correlationGrid) Y(r int) float64 { return float64(r) }

func renderCorrelationHeatmap(books []models.Book, path string) error {
	grid := correlationGrid(Correlation(books))
	n := len(grid)

	heat := plotter.NewHeatMap(grid, moreland.SmoothBlueRed().Palette(255))
	heat.Min, heat.Max = -1, 1
	heat.NaN = color.Gray{Y: 220}

	xys := make(plotter.XYs, 0, n*n)
	texts := make([]string, 0, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			xys = append(xys, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			texts = append(texts, formatCoefficient(grid.Z(c, r)))
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}

	rows := make([]string, n)
	for r := range rows {
		rows[r] = NumericColumns[n-1-r]
	}

	p := plot.New()
	p.Title.Text = "Correlation of numeric columns"
	p.Add(heat, labels)
	p.NominalX(NumericColumns...)
	p.NominalY(rows...)
	p.X.Tick.Label.Rotation = math.Pi / 8
	p.X.Tick.Label.XAlign = draw.XRight
	return p.Save(8*vg.Inch, 7*vg.Inch, path)
}

func formatCoefficient(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.2f", v)
}

func savePNG(c *vgimg.Canvas, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
