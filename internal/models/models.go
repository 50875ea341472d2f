package models

// Group is one input subfolder's worth of panoramas, as listed in qindex.json
type Group struct {
	Name   string        `json:"name"`
	Images []ImageRecord `json:"images"`
}

// ImageRecord describes one processed panorama
type ImageRecord struct {
	Name string `json:"imagename"`

	// [longitude, latitude, altitude]
	LonLat []float64 `json:"lonlat"`

	// Reserved by the viewer; never set by the tiler
	Height          *float64 `json:"height"`
	LongitudeOffset *float64 `json:"longitudeoffset"`

	UseTile bool `json:"usetile"`

	// Run bookkeeping, not part of the manifest
	Stats TileStats `json:"-"`
}

// TileStats records what was written for one image
type TileStats struct {
	SourcePath   string
	Width        int
	Height       int
	Eligible     bool
	TilesWritten int
	TilesFailed  int
	Thumbnail    bool
}

// NewImageRecord assembles the record for one image from its tiling outcome
// and geotag vector.
func NewImageRecord(name string, useTile bool, lonLat []float64, stats TileStats) ImageRecord {
	return ImageRecord{
		Name:    name,
		LonLat:  lonLat,
		UseTile: useTile,
		Stats:   stats,
	}
}
