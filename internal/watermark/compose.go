package watermark

import (
	"errors"
	"image"
	"strings"

	"brandmark/internal/domain"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/wb-go/wbf/zlog"
	xfont "golang.org/x/image/font"
)

var ErrNilImage = errors.New("nil image")

// Compositor renders the watermark plane and blends it over product images.
// It is safe to share across a batch: the font is parsed once and every
// call works on private copies.
type Compositor struct {
	font   *truetype.Font
	logger *zlog.Zerolog
}

func NewCompositor(fontPath string, logger *zlog.Zerolog) (*Compositor, error) {
	f, err := LoadFont(fontPath)
	if err != nil {
		return nil, err
	}
	return &Compositor{font: f, logger: logger}, nil
}

// Apply layers a transparent watermark plane (backdrop, logo, tiled text)
// over src. A text rendering failure is downgraded to a logo-only
// composite; it never fails the image.
func (c *Compositor) Apply(src image.Image, logo image.Image, cfg domain.WatermarkConfig) (*image.NRGBA, error) {
	if src == nil || logo == nil {
		return nil, ErrNilImage
	}

	bounds := src.Bounds()
	canvasW := bounds.Dx()
	canvasH := bounds.Dy()

	plane := image.NewNRGBA(image.Rect(0, 0, canvasW, canvasH))

	pl := LogoPlacement(canvasW, canvasH, logo.Bounds().Dx(), logo.Bounds().Dy(), cfg.LogoScale, cfg.Padding)
	scaledLogo := imaging.Resize(logo, pl.W, pl.H, imaging.Lanczos)

	if cfg.Backdrop {
		backdrop := imaging.New(pl.W, pl.H, cfg.BackdropColor.NRGBA())
		plane = imaging.Overlay(plane, backdrop, image.Pt(pl.X+cfg.BackdropOffsetX, pl.Y+cfg.BackdropOffsetY), 1.0)
	}
	plane = imaging.Overlay(plane, scaledLogo, image.Pt(pl.X, pl.Y), 1.0)

	c.drawTiledText(plane, canvasW, canvasH, cfg)

	return imaging.Overlay(src, plane, image.Pt(0, 0), 1.0), nil
}

// drawTiledText repeats the brand text across the plane at the configured
// anchor. Empty or unmeasurable text is a no-op, not an error.
func (c *Compositor) drawTiledText(plane *image.NRGBA, canvasW, canvasH int, cfg domain.WatermarkConfig) {
	text := strings.TrimSpace(cfg.BrandText)
	if text == "" {
		return
	}

	face := newFace(c.font, cfg.FontSize)
	defer face.Close()

	textW, textH, ascent := measureText(face, text)
	if textW <= 0 || textH <= 0 {
		return
	}

	y := TextAnchorY(canvasH, textH, cfg.Padding, cfg.TextPosition)
	step := TileStep(textW, cfg.HorizontalSpacing)

	ft := freetype.NewContext()
	ft.SetDPI(fontDPI)
	ft.SetFont(c.font)
	ft.SetFontSize(cfg.FontSize)
	ft.SetClip(plane.Bounds())
	ft.SetDst(plane)
	ft.SetSrc(image.NewUniform(cfg.TextNRGBA()))
	ft.SetHinting(xfont.HintingFull)

	for _, x := range TilePositions(textW, canvasW, step) {
		if _, err := ft.DrawString(text, freetype.Pt(x, y+ascent)); err != nil {
			if c.logger != nil {
				c.logger.Warn().Err(err).Str("text", text).Msg("Skipping text watermark")
			}
			return
		}
	}
}
