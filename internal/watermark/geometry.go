// Package watermark implements the compositing geometry and the per-image
// watermark application: logo placement, tiled text, letterboxed resizing.
package watermark

import (
	"math"

	"brandmark/internal/domain"
)

// Placement is the scaled logo size and its bottom-right anchored origin.
type Placement struct {
	W, H int
	X, Y int
}

// LogoPlacement computes the logo target size as a fraction of the product
// width and anchors it to the bottom-right corner. Coordinates are not
// clamped: a large logo or padding may place the origin off-canvas.
func LogoPlacement(productW, productH, logoW, logoH int, scale float64, padding int) Placement {
	targetW := int(math.Round(float64(productW) * scale))
	if targetW < 1 {
		targetW = 1
	}

	aspect := 1.0
	if logoW > 0 {
		aspect = float64(logoH) / float64(logoW)
	}
	targetH := int(math.Round(float64(targetW) * aspect))
	if targetH < 1 {
		targetH = 1
	}

	return Placement{
		W: targetW,
		H: targetH,
		X: productW - targetW - padding,
		Y: productH - targetH - padding,
	}
}

// TextAnchorY returns the vertical anchor of the tiled text band.
func TextAnchorY(canvasH, textH, padding int, pos domain.TextPosition) int {
	switch pos {
	case domain.PositionTop:
		return padding
	case domain.PositionMiddle:
		return (canvasH - textH) / 2
	default:
		return canvasH - textH - padding
	}
}

// TileStep is the horizontal advance between tiles, floored to 1 so the
// tiling loop always makes progress.
func TileStep(textW, spacing int) int {
	step := textW + spacing
	if step < 1 {
		step = 1
	}
	return step
}

// TilePositions lists the x coordinates of every tile. Tiling starts one
// full text width left of the origin and runs one past the right edge, so
// the pattern has no gap at either side for any canvas width.
func TilePositions(textW, canvasW, step int) []int {
	var xs []int
	for x := -textW; x < canvasW+textW; x += step {
		xs = append(xs, x)
	}
	return xs
}
