package watermark

import (
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const fontDPI = 72

// LoadFont parses the TTF at path, falling back to the bundled Go Regular
// face when the path is empty or unreadable.
func LoadFont(path string) (*truetype.Font, error) {
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			if f, err := truetype.Parse(b); err == nil {
				return f, nil
			}
		}
	}
	return truetype.Parse(goregular.TTF)
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
}

// measureText returns the rendered bounding-box width and height of s and
// the face ascent used to convert a top anchor into a baseline.
func measureText(face font.Face, s string) (w, h, ascent int) {
	b, _ := font.BoundString(face, s)
	w = (b.Max.X - b.Min.X).Ceil()
	h = (b.Max.Y - b.Min.Y).Ceil()
	ascent = face.Metrics().Ascent.Ceil()
	return w, h, ascent
}
