package watermark

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ResizeWithPadding fits img into a canvas of exactly (targetW, targetH),
// preserving the source aspect ratio and filling the uncovered area with
// an opaque bg color. The fitted image is centered with integer-floor
// offsets and pasted through its own alpha channel.
func ResizeWithPadding(img image.Image, targetW, targetH int, bg color.NRGBA) *image.NRGBA {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()

	srcRatio := float64(srcW) / float64(srcH)
	targetRatio := float64(targetW) / float64(targetH)

	var newW, newH int
	if srcRatio > targetRatio {
		newW = targetW
		newH = int(float64(newW) / srcRatio)
	} else {
		newH = targetH
		newW = int(float64(newH) * srcRatio)
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	resized := imaging.Resize(img, newW, newH, imaging.Lanczos)

	canvas := imaging.New(targetW, targetH, color.NRGBA{R: bg.R, G: bg.G, B: bg.B, A: 255})
	offset := image.Pt((targetW-newW)/2, (targetH-newH)/2)

	return imaging.Overlay(canvas, resized, offset, 1.0)
}
