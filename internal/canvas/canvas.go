// Package canvas pads an equirectangular panorama onto a 2:1 canvas so the
// tile grid lines up with the full sphere.
package canvas

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ErrNotEligible is returned for images that are too small or not wide enough to tile
var ErrNotEligible = errors.New("panorama not eligible for tiling")

// Layout is the geometry of a padded canvas
type Layout struct {
	// Source size
	Width  int
	Height int

	// Canvas is Side x CanvasHeight, with the source copied at (0, Offset)
	Side         int
	CanvasHeight int
	Offset       int
}

// Eligible reports whether a w x h image can be tiled: at least 2:1 and at
// least minSide wide.
func Eligible(w, h, minSide int) bool {
	return w >= 2*h && w >= minSide
}

// Geometry computes the canvas layout for a w x h source. Offset is clamped to
// 0 when the source is taller than w/2; such images never pass Eligible.
func Geometry(w, h int) Layout {
	canvasHeight := w / 2
	offset := (canvasHeight - h) / 2
	if offset < 0 {
		offset = 0
	}
	return Layout{
		Width:        w,
		Height:       h,
		Side:         w,
		CanvasHeight: canvasHeight,
		Offset:       offset,
	}
}

// Canvas is a normalized panorama ready for slicing
type Canvas struct {
	Layout
	Image *image.RGBA
}

// Normalize copies img onto a black Side x Side/2 canvas, vertically centred
// and unscaled. Images failing Eligible return ErrNotEligible.
func Normalize(img image.Image, minSide int) (*Canvas, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if !Eligible(w, h, minSide) {
		return nil, fmt.Errorf("%w: %dx%d (need width >= 2*height and width >= %d)", ErrNotEligible, w, h, minSide)
	}

	layout := Geometry(w, h)
	dst := image.NewRGBA(image.Rect(0, 0, layout.Side, layout.CanvasHeight))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)

	target := image.Rect(0, layout.Offset, w, layout.Offset+h).Intersect(dst.Bounds())
	draw.Draw(dst, target, img, b.Min, draw.Src)

	return &Canvas{Layout: layout, Image: dst}, nil
}
