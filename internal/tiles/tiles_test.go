package tiles

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/panotiler/internal/imageio"
)

var stockGrid = Grid{Rows: 4, Columns: 8}

func TestName(t *testing.T) {
	tests := []struct {
		cell Cell
		want string
	}{
		{Cell{0, 0}, "row-1-column-1.jpg"},
		{Cell{3, 7}, "row-4-column-8.jpg"},
		{Cell{1, 4}, "row-2-column-5.jpg"},
	}
	for _, tt := range tests {
		if got := Name(tt.cell, "jpg"); got != tt.want {
			t.Errorf("Name(%+v) = %s, want %s", tt.cell, got, tt.want)
		}
	}
}

func TestGrid(t *testing.T) {
	if stockGrid.Count() != 32 {
		t.Errorf("Expected 32 tiles, got %d", stockGrid.Count())
	}

	cells := stockGrid.Cells()
	if len(cells) != 32 {
		t.Fatalf("Expected 32 cells, got %d", len(cells))
	}
	if cells[9] != (Cell{Row: 1, Column: 1}) {
		t.Errorf("Expected row-major order, cell 9 = %+v", cells[9])
	}

	tests := map[int]int{10000: 1250, 10007: 1250, 80: 10, 7: 0}
	for side, want := range tests {
		if got := stockGrid.TileSize(side); got != want {
			t.Errorf("TileSize(%d) = %d, want %d", side, got, want)
		}
	}
}

func TestCellRect(t *testing.T) {
	r := Cell{Row: 2, Column: 5}.Rect(10)
	if r != image.Rect(50, 20, 60, 30) {
		t.Errorf("Unexpected rect %v", r)
	}
}

// gradient encodes the column in R and the row in G so tiles can be told apart
func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	return img
}

func TestSliceWritesAllTiles(t *testing.T) {
	dir := t.TempDir()
	// 84 wide: tile side 10, four remainder columns dropped
	src := gradient(84, 42)

	res := Slice(context.Background(), src, dir, Options{
		Grid:      stockGrid,
		Extension: "png",
		Workers:   4,
	})

	if res.TileSize != 10 {
		t.Errorf("Expected tile size 10, got %d", res.TileSize)
	}
	if res.Written != 32 || len(res.Failed) != 0 {
		t.Fatalf("Expected 32 written and no failures, got %d written, %v", res.Written, res.Failed)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 32 {
		t.Errorf("Expected 32 files, got %d", len(entries))
	}

	for _, cell := range stockGrid.Cells() {
		path := filepath.Join(dir, Name(cell, "png"))
		img, err := imageio.Open(path)
		if err != nil {
			t.Fatalf("Failed to open %s: %v", path, err)
		}
		b := img.Bounds()
		if b.Dx() != 10 || b.Dy() != 10 {
			t.Errorf("%s is %dx%d, want 10x10", path, b.Dx(), b.Dy())
		}
		r, g, _, _ := img.At(b.Min.X, b.Min.Y).RGBA()
		if int(r>>8) != cell.Column*10 || int(g>>8) != cell.Row*10 {
			t.Errorf("%s top-left pixel = (%d,%d), want (%d,%d)", path, r>>8, g>>8, cell.Column*10, cell.Row*10)
		}
	}
}

func TestSliceIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	// a directory squatting on one tile path makes that single write fail
	blocked := filepath.Join(dir, Name(Cell{Row: 2, Column: 3}, "png"))
	if err := os.Mkdir(blocked, 0755); err != nil {
		t.Fatal(err)
	}

	res := Slice(context.Background(), gradient(80, 40), dir, Options{
		Grid:      stockGrid,
		Extension: "png",
		Workers:   2,
	})

	if res.Written != 31 {
		t.Errorf("Expected 31 tiles written, got %d", res.Written)
	}
	if len(res.Failed) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(res.Failed))
	}
	if f := res.Failed[0]; f.Cell != (Cell{Row: 2, Column: 3}) || f.Path != blocked {
		t.Errorf("Unexpected failure %+v", f)
	}
}

func TestSliceMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	res := Slice(context.Background(), gradient(80, 40), dir, Options{
		Grid:      stockGrid,
		Extension: "jpg",
		Quality:   80,
	})
	if res.Written != 0 || len(res.Failed) != 32 {
		t.Errorf("Expected every tile to fail, got %d written, %d failed", res.Written, len(res.Failed))
	}
}
