package watermark

import (
	"image/color"
	"testing"

	"brandmark/internal/domain"

	"github.com/stretchr/testify/require"
)

func newTestCompositor(t *testing.T) *Compositor {
	t.Helper()

	c, err := NewCompositor("", nil)
	require.NoError(t, err)
	require.NotNil(t, c)

	return c
}

func TestCompositor_Apply_NilImages(t *testing.T) {
	c := newTestCompositor(t)
	img := solidImage(10, 10, color.NRGBA{A: 255})

	_, err := c.Apply(nil, img, domain.DefaultWatermarkConfig())
	require.ErrorIs(t, err, ErrNilImage)

	_, err = c.Apply(img, nil, domain.DefaultWatermarkConfig())
	require.ErrorIs(t, err, ErrNilImage)
}

func TestCompositor_Apply_PreservesDimensions(t *testing.T) {
	c := newTestCompositor(t)

	src := solidImage(640, 480, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	logo := solidImage(100, 50, color.NRGBA{R: 255, A: 255})

	cfg := domain.DefaultWatermarkConfig()
	cfg.BrandText = "ACME"

	out, err := c.Apply(src, logo, cfg)
	require.NoError(t, err)
	require.Equal(t, 640, out.Bounds().Dx())
	require.Equal(t, 480, out.Bounds().Dy())
}

func TestCompositor_Apply_DrawsLogo(t *testing.T) {
	c := newTestCompositor(t)

	src := solidImage(400, 400, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	logo := solidImage(100, 100, color.NRGBA{R: 255, A: 255})

	cfg := domain.DefaultWatermarkConfig()
	cfg.BrandText = ""
	cfg.LogoScale = 0.25
	cfg.Padding = 20

	out, err := c.Apply(src, logo, cfg)
	require.NoError(t, err)

	// 400*0.25 = 100x100 logo anchored at (280, 280).
	inside := out.NRGBAAt(330, 330)
	require.Equal(t, color.NRGBA{R: 255, A: 255}, inside)

	// Pixels outside the placement stay untouched.
	outside := out.NRGBAAt(10, 10)
	require.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, outside)
}

func TestCompositor_Apply_EmptyTextNoOp(t *testing.T) {
	c := newTestCompositor(t)

	src := solidImage(300, 300, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	logo := solidImage(10, 10, color.NRGBA{G: 255, A: 255})

	cfg := domain.DefaultWatermarkConfig()
	cfg.BrandText = "   "

	withBlank, err := c.Apply(src, logo, cfg)
	require.NoError(t, err)

	cfg.BrandText = ""
	withEmpty, err := c.Apply(src, logo, cfg)
	require.NoError(t, err)

	// Whitespace-only text behaves exactly like no text at all.
	require.Equal(t, withEmpty.Pix, withBlank.Pix)
}

func TestCompositor_Apply_TextChangesPixels(t *testing.T) {
	c := newTestCompositor(t)

	src := solidImage(500, 500, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	logo := solidImage(10, 10, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	plain := domain.DefaultWatermarkConfig()
	plain.BrandText = ""

	branded := plain
	branded.BrandText = "ACME"
	branded.TextColor = domain.RGB{R: 0, G: 0, B: 0}
	branded.TextOpacity = 1.0

	without, err := c.Apply(src, logo, plain)
	require.NoError(t, err)

	with, err := c.Apply(src, logo, branded)
	require.NoError(t, err)

	require.NotEqual(t, without.Pix, with.Pix)
}

func TestCompositor_Apply_Backdrop(t *testing.T) {
	c := newTestCompositor(t)

	src := solidImage(400, 400, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	logo := solidImage(100, 100, color.NRGBA{R: 0, G: 0, B: 255, A: 0})

	cfg := domain.DefaultWatermarkConfig()
	cfg.BrandText = ""
	cfg.LogoScale = 0.25
	cfg.Padding = 20
	cfg.Backdrop = true
	cfg.BackdropColor = domain.RGBA{R: 10, G: 10, B: 10, A: 255}
	cfg.BackdropOffsetX = 0
	cfg.BackdropOffsetY = 0

	out, err := c.Apply(src, logo, cfg)
	require.NoError(t, err)

	// The transparent logo lets the backdrop show through at the anchor.
	require.Equal(t, color.NRGBA{R: 10, G: 10, B: 10, A: 255}, out.NRGBAAt(330, 330))
}

func TestLoadFont_Fallback(t *testing.T) {
	f, err := LoadFont("")
	require.NoError(t, err)
	require.NotNil(t, f)

	f, err = LoadFont("/does/not/exist.ttf")
	require.NoError(t, err)
	require.NotNil(t, f)
}
