package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font/opentype"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
)

// customTypeface names the font loaded by RegisterFont in the plot font cache.
const customTypeface font.Typeface = "ReportFont"

// RegisterFont loads a TrueType/OpenType font (or the first face of a .ttc
// collection) and makes it the default for every chart drawn afterwards.
// Without it the bundled Liberation fonts are used, which have no Hangul glyphs.
func RegisterFont(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font file: %w", err)
	}

	var face *opentype.Font
	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return fmt.Errorf("parse font collection %s: %w", path, err)
		}
		face, err = coll.Font(0)
		if err != nil {
			return fmt.Errorf("font collection %s: %w", path, err)
		}
	} else {
		face, err = opentype.Parse(data)
		if err != nil {
			return fmt.Errorf("parse font %s: %w", path, err)
		}
	}

	descriptor := font.Font{Typeface: customTypeface}
	font.DefaultCache.Add(font.Collection{{Font: descriptor, Face: face}})
	plot.DefaultFont = descriptor
	plotter.DefaultFont = descriptor
	return nil
}
