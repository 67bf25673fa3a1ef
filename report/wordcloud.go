package report

import (
	"errors"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/aluiziolira/go-scrape-yes24/models"
)

const (
	cloudWidthPx  = 800
	cloudHeightPx = 400
	cloudDPI      = 96
	cloudMaxWords = 200

	cloudMinSize = vg.Length(8)
	cloudMaxSize = vg.Length(64)
	cloudPadding = vg.Length(2)
	spiralStep   = 0.05
)

// placedWord is a word laid out on the cloud canvas. Box spans the text from
// its lowest descender to its highest ascender.
type placedWord struct {
	Word    string
	Size    vg.Length
	Box     vg.Rectangle
	Descent vg.Length
}

// measureFunc returns the advance width and vertical extents of word at size.
type measureFunc func(word string, size vg.Length) (width, ascent, descent vg.Length)

func wordSize(count, maxCount int) vg.Length {
	relative := float64(count) / float64(maxCount)
	return cloudMinSize + (cloudMaxSize-cloudMinSize)*vg.Length(math.Sqrt(relative))
}

// layoutWords places words, most frequent first, on an elliptic spiral around
// the canvas centre. A word that does not fit is retried at smaller sizes and
// dropped once it would fall below the minimum size.
func layoutWords(words []WordCount, w, h vg.Length, measure measureFunc) []placedWord {
	if len(words) == 0 {
		return nil
	}
	maxCount := words[0].Count

	var placed []placedWord
	for i, wc := range words {
		if i >= cloudMaxWords {
			break
		}
		for size := wordSize(wc.Count, maxCount); size >= cloudMinSize; size *= 0.85 {
			width, ascent, descent := measure(wc.Word, size)
			box, ok := findSlot(width, ascent+descent, w, h, placed)
			if ok {
				placed = append(placed, placedWord{Word: wc.Word, Size: size, Box: box, Descent: descent})
				break
			}
		}
	}
	return placed
}

func findSlot(width, height, w, h vg.Length, placed []placedWord) (vg.Rectangle, bool) {
	if width > w || height > h {
		return vg.Rectangle{}, false
	}
	aspect := float64(w / h)
	limit := math.Hypot(float64(w), float64(h)) / 2

	for t := 0.0; ; t += spiralStep {
		r := 2 * t
		if r > limit {
			return vg.Rectangle{}, false
		}
		cx := w/2 + vg.Length(r*aspect*math.Cos(t))
		cy := h/2 + vg.Length(r*math.Sin(t))
		box := vg.Rectangle{
			Min: vg.Point{X: cx - width/2, Y: cy - height/2},
			Max: vg.Point{X: cx + width/2, Y: cy + height/2},
		}
		if box.Min.X < 0 || box.Min.Y < 0 || box.Max.X > w || box.Max.Y > h {
			continue
		}
		if !collides(box, placed) {
			return box, true
		}
	}
}

func collides(box vg.Rectangle, placed []placedWord) bool {
	for _, p := range placed {
		if box.Min.X < p.Box.Max.X+cloudPadding && p.Box.Min.X < box.Max.X+cloudPadding &&
			box.Min.Y < p.Box.Max.Y+cloudPadding && p.Box.Min.Y < box.Max.Y+cloudPadding {
			return true
		}
	}
	return false
}

func renderWordCloud(books []models.Book, path string) error {
	words := WordFrequencies(books)
	if len(words) == 0 {
		return errors.New("no title words to draw")
	}

	w := vg.Length(cloudWidthPx) * vg.Inch / cloudDPI
	h := vg.Length(cloudHeightPx) * vg.Inch / cloudDPI
	canvas := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(cloudDPI),
		vgimg.UseBackgroundColor(color.White),
	)

	measure := func(word string, size vg.Length) (vg.Length, vg.Length, vg.Length) {
		face := font.DefaultCache.Lookup(plot.DefaultFont, size)
		extents := face.Extents()
		return face.Width(word), extents.Ascent, extents.Descent
	}

	for i, pw := range layoutWords(words, w, h, measure) {
		face := font.DefaultCache.Lookup(plot.DefaultFont, pw.Size)
		canvas.SetColor(plotutil.DarkColors[i%len(plotutil.DarkColors)])
		canvas.FillString(face, vg.Point{X: pw.Box.Min.X, Y: pw.Box.Min.Y + pw.Descent}, pw.Word)
	}
	return savePNG(canvas, path)
}
