package tiles

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/lehigh-university-libraries/panotiler/internal/imageio"
	"github.com/lehigh-university-libraries/panotiler/internal/parallel"
)

// Grid is the fixed row/column layout cut from a canvas
type Grid struct {
	Rows    int
	Columns int
}

// Cell is a 0-indexed grid position
type Cell struct {
	Row    int
	Column int
}

// Count returns the number of tiles in the grid
func (g Grid) Count() int {
	return g.Rows * g.Columns
}

// TileSize returns the side of one square tile for a canvas of the given
// width. Remainder pixels on the right and bottom are dropped.
func (g Grid) TileSize(side int) int {
	if g.Columns <= 0 {
		return 0
	}
	return side / g.Columns
}

// Cells enumerates the grid row by row
func (g Grid) Cells() []Cell {
	cells := make([]Cell, 0, g.Count())
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Columns; c++ {
			cells = append(cells, Cell{Row: r, Column: c})
		}
	}
	return cells
}

// Rect returns the pixel rectangle of a cell for tile size t
func (c Cell) Rect(t int) image.Rectangle {
	return image.Rect(c.Column*t, c.Row*t, (c.Column+1)*t, (c.Row+1)*t)
}

// Name returns the file name of a tile, e.g. row-1-column-1.jpg for cell (0,0)
func Name(c Cell, ext string) string {
	return fmt.Sprintf("row-%d-column-%d.%s", c.Row+1, c.Column+1, ext)
}

// Options controls how tiles are written
type Options struct {
	Grid      Grid
	Extension string
	Quality   int
	Workers   int
}

// Failure records one tile that could not be written
type Failure struct {
	Cell
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("tile %s: %v", f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result summarizes one slicing pass
type Result struct {
	TileSize int
	Written  int
	Failed   []Failure
}

// Slice cuts src into opts.Grid tiles and writes them into dir, which must
// already exist. Every tile is attempted; failures are logged and returned in
// Result.Failed without stopping the others.
func Slice(ctx context.Context, src image.Image, dir string, opts Options) Result {
	size := opts.Grid.TileSize(src.Bounds().Dx())
	result := Result{TileSize: size}

	origin := src.Bounds().Min
	results := parallel.Map(ctx, opts.Workers, opts.Grid.Cells(), func(_ context.Context, cell Cell) (string, error) {
		path := filepath.Join(dir, Name(cell, opts.Extension))
		tile, err := subImage(src, cell.Rect(size).Add(origin))
		if err != nil {
			return path, err
		}
		return path, imageio.Save(tile, path, opts.Extension, opts.Quality)
	})

	cells := opts.Grid.Cells()
	for _, r := range results {
		if r.Err == nil {
			slog.Debug("Tile written", "path", r.Value)
			result.Written++
			continue
		}

		path := r.Value
		if path == "" {
			path = filepath.Join(dir, Name(cells[r.Index], opts.Extension))
		}
		slog.Warn("Failed to write tile", "path", path, "error", r.Err)
		result.Failed = append(result.Failed, Failure{Cell: cells[r.Index], Path: path, Err: r.Err})
	}

	return result
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func subImage(img image.Image, r image.Rectangle) (image.Image, error) {
	si, ok := img.(subImager)
	if !ok {
		return nil, fmt.Errorf("can't create sub image from %T", img)
	}
	if !r.In(img.Bounds()) {
		return nil, fmt.Errorf("tile %v outside image bounds %v", r, img.Bounds())
	}
	return si.SubImage(r), nil
}
