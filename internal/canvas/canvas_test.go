package canvas

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestEligible(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		minSide int
		want    bool
	}{
		{"exact 2:1 at threshold", 5000, 2500, 5000, true},
		{"wider than 2:1", 10000, 4000, 5000, true},
		{"too narrow", 9000, 5000, 5000, false},
		{"too small", 4000, 2000, 5000, false},
		{"degenerate", 0, 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eligible(tt.w, tt.h, tt.minSide); got != tt.want {
				t.Errorf("Eligible(%d, %d, %d) = %v, want %v", tt.w, tt.h, tt.minSide, got, tt.want)
			}
		})
	}
}

func TestGeometry(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		wantHeight int
		wantOffset int
	}{
		{"exact 2:1", 10000, 5000, 5000, 0},
		{"letterboxed", 10000, 4000, 5000, 500},
		{"odd width", 10001, 4000, 5000, 500},
		{"odd padding", 100, 47, 50, 1},
		{"taller than canvas clamps", 100, 80, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Geometry(tt.w, tt.h)
			if l.Side != tt.w {
				t.Errorf("Side = %d, want %d", l.Side, tt.w)
			}
			if l.CanvasHeight != tt.wantHeight {
				t.Errorf("CanvasHeight = %d, want %d", l.CanvasHeight, tt.wantHeight)
			}
			if l.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", l.Offset, tt.wantOffset)
			}
		})
	}
}

func TestNormalizeCentersSource(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	src := image.NewRGBA(image.Rect(0, 0, 80, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 80; x++ {
			src.Set(x, y, red)
		}
	}

	c, err := Normalize(src, 64)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if b := c.Image.Bounds(); b.Dx() != 80 || b.Dy() != 40 {
		t.Fatalf("Expected 80x40 canvas, got %dx%d", b.Dx(), b.Dy())
	}
	if c.Offset != 5 {
		t.Errorf("Expected offset 5, got %d", c.Offset)
	}

	black := color.RGBA{A: 255}
	checks := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, black},
		{79, 4, black},
		{0, 5, red},
		{79, 34, red},
		{40, 35, black},
		{40, 39, black},
	}
	for _, ck := range checks {
		if got := c.Image.RGBAAt(ck.x, ck.y); got != ck.want {
			t.Errorf("Pixel (%d,%d) = %v, want %v", ck.x, ck.y, got, ck.want)
		}
	}
}

func TestNormalizeOffsetBounds(t *testing.T) {
	// sub-image with a non-zero origin must still land at (0, offset)
	big := image.NewRGBA(image.Rect(0, 0, 200, 200))
	big.Set(10, 20, color.RGBA{G: 255, A: 255})
	src := big.SubImage(image.Rect(10, 20, 110, 60))

	c, err := Normalize(src, 1)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got := c.Image.RGBAAt(0, c.Offset); got.G != 255 {
		t.Errorf("Expected source origin at (0,%d), got %v", c.Offset, got)
	}
}

func TestNormalizeNotEligible(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 60, 40))
	c, err := Normalize(src, 10)
	if !errors.Is(err, ErrNotEligible) {
		t.Fatalf("Expected ErrNotEligible, got %v", err)
	}
	if c != nil {
		t.Error("Expected nil canvas")
	}
}
