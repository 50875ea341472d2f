package tilecmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/panotiler/internal/manifest"
	"github.com/lehigh-university-libraries/panotiler/internal/models"
)

func executeInspect(w io.Writer, path string, limit int) error {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return inspectIndex(w, path, limit)
	}

	groups, err := manifest.Read(path)
	if err != nil {
		return err
	}

	total := 0
	for _, g := range groups {
		total += len(g.Images)
	}
	fmt.Fprintf(w, "Loaded %d groups with %d images from %s\n", len(groups), total, path)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	for _, g := range groups {
		fmt.Fprintf(w, "\n%s (%d images)\n", g.Name, len(g.Images))
		for i, img := range g.Images {
			if limit > 0 && i >= limit {
				fmt.Fprintf(w, "  ... %d more\n", len(g.Images)-limit)
				break
			}
			fmt.Fprintf(w, "  %-30s usetile=%-5v lonlat=%s\n", img.Name, img.UseTile, formatLonLat(img))
		}
	}

	return nil
}

func inspectIndex(w io.Writer, path string, limit int) error {
	rows, err := manifest.ReadIndex(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Loaded %d rows from %s\n", len(rows), path)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	for i, r := range rows {
		if limit > 0 && i >= limit {
			fmt.Fprintf(w, "... %d more\n", len(rows)-limit)
			break
		}
		fmt.Fprintf(w, "%s/%s  %dx%d  tiles=%d failed=%d  usetile=%v  [%g, %g, %g]\n",
			r.Group, r.Image, r.Width, r.Height, r.TilesWritten, r.TilesFailed, r.UseTile,
			r.Longitude, r.Latitude, r.Altitude)
	}

	return nil
}

func formatLonLat(img models.ImageRecord) string {
	parts := make([]string, 0, len(img.LonLat))
	for _, v := range img.LonLat {
		parts = append(parts, fmt.Sprintf("%g", v))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
