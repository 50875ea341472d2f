package manifest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/lehigh-university-libraries/panotiler/internal/models"
)

// IndexRow is one image in the flattened parquet index
type IndexRow struct {
	Group        string  `parquet:"group"`
	Image        string  `parquet:"image"`
	Longitude    float64 `parquet:"longitude"`
	Latitude     float64 `parquet:"latitude"`
	Altitude     float64 `parquet:"altitude"`
	UseTile      bool    `parquet:"usetile"`
	Width        int32   `parquet:"width"`
	Height       int32   `parquet:"height"`
	TilesWritten int32   `parquet:"tiles_written"`
	TilesFailed  int32   `parquet:"tiles_failed"`
}

// IndexName returns the parquet file name paired with a manifest name,
// e.g. qindex.parquet for qindex.json.
func IndexName(manifestName string) string {
	return strings.TrimSuffix(manifestName, filepath.Ext(manifestName)) + ".parquet"
}

// Rows flattens groups into index rows
func Rows(groups []models.Group) []IndexRow {
	var rows []IndexRow
	for _, g := range groups {
		for _, img := range g.Images {
			row := IndexRow{
				Group:        g.Name,
				Image:        img.Name,
				UseTile:      img.UseTile,
				Width:        int32(img.Stats.Width),
				Height:       int32(img.Stats.Height),
				TilesWritten: int32(img.Stats.TilesWritten),
				TilesFailed:  int32(img.Stats.TilesFailed),
			}
			if len(img.LonLat) == 3 {
				row.Longitude, row.Latitude, row.Altitude = img.LonLat[0], img.LonLat[1], img.LonLat[2]
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteIndex writes the flattened index of groups to path
func WriteIndex(path string, groups []models.Group) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet index: %w", err)
	}

	rows := Rows(groups)
	writer := parquet.NewGenericWriter[IndexRow](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		_ = file.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to finish parquet index: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close parquet index: %w", err)
	}

	slog.Debug("Parquet index written", "path", path, "rows", len(rows))
	return nil
}

// ReadIndex loads every row of a parquet index
func ReadIndex(path string) ([]IndexRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet index: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet index opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[IndexRow](pf)
	defer reader.Close()

	var records []IndexRow
	rows := make([]IndexRow, 128)
	for {
		n, err := reader.Read(rows)
		records = append(records, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return records, nil
}
