package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/panotiler/internal/config"
	"github.com/lehigh-university-libraries/panotiler/internal/models"
)

// FileName is written next to the manifest when reporting is enabled
const FileName = "qreport.yaml"

// RunConfig represents the configuration section of the report
type RunConfig struct {
	RunID        string `yaml:"runid"`
	Input        string `yaml:"input"`
	Output       string `yaml:"output"`
	MinSide      int    `yaml:"minside"`
	Grid         string `yaml:"grid"`
	Thumbnail    string `yaml:"thumbnail"`
	Workers      int    `yaml:"workers"`
	StartedAt    string `yaml:"startedat"`
	FinishedAt   string `yaml:"finishedat"`
	ManifestPath string `yaml:"manifestpath"`
}

// ImageEntry is one image line in the report
type ImageEntry struct {
	Name         string    `yaml:"name"`
	Source       string    `yaml:"source"`
	Size         string    `yaml:"size"`
	UseTile      bool      `yaml:"usetile"`
	TilesWritten int       `yaml:"tileswritten"`
	TilesFailed  int       `yaml:"tilesfailed,omitempty"`
	Thumbnail    bool      `yaml:"thumbnail"`
	LonLat       []float64 `yaml:"lonlat,flow"`
}

// GroupEntry summarizes one group
type GroupEntry struct {
	Name    string       `yaml:"name"`
	Images  []ImageEntry `yaml:"images"`
	Skipped []string     `yaml:"skipped,omitempty"`
}

// Report is the complete YAML document
type Report struct {
	Config RunConfig    `yaml:"config"`
	Groups []GroupEntry `yaml:"groups"`
}

// Failure is an image that was dropped from its group
type Failure struct {
	Group string
	Path  string
	Err   error
}

// Build assembles a report from a finished run
func Build(runID, input, output string, cfg config.Config, started, finished time.Time, manifestPath string, groups []models.Group, failures []Failure) Report {
	rep := Report{
		Config: RunConfig{
			RunID:        runID,
			Input:        input,
			Output:       output,
			MinSide:      cfg.MinSide,
			Grid:         fmt.Sprintf("%dx%d", cfg.TileRows, cfg.TileColumns),
			Thumbnail:    fmt.Sprintf("%dx%d", cfg.ThumbnailWidth, cfg.ThumbnailHeight),
			Workers:      cfg.Workers,
			StartedAt:    started.Format(time.RFC3339),
			FinishedAt:   finished.Format(time.RFC3339),
			ManifestPath: manifestPath,
		},
		Groups: make([]GroupEntry, 0, len(groups)),
	}

	skipped := make(map[string][]string)
	for _, f := range failures {
		skipped[f.Group] = append(skipped[f.Group], fmt.Sprintf("%s: %v", f.Path, f.Err))
	}

	for _, g := range groups {
		entry := GroupEntry{
			Name:    g.Name,
			Images:  make([]ImageEntry, 0, len(g.Images)),
			Skipped: skipped[g.Name],
		}
		for _, img := range g.Images {
			entry.Images = append(entry.Images, ImageEntry{
				Name:         img.Name,
				Source:       img.Stats.SourcePath,
				Size:         fmt.Sprintf("%dx%d", img.Stats.Width, img.Stats.Height),
				UseTile:      img.UseTile,
				TilesWritten: img.Stats.TilesWritten,
				TilesFailed:  img.Stats.TilesFailed,
				Thumbnail:    img.Stats.Thumbnail,
				LonLat:       img.LonLat,
			})
		}
		rep.Groups = append(rep.Groups, entry)
	}

	return rep
}

// Save writes the report as YAML into dir and returns its path
func Save(dir string, rep Report) (string, error) {
	data, err := yaml.Marshal(&rep)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return path, nil
}

// Load reads a report written by Save
func Load(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read report: %w", err)
	}

	var rep Report
	if err := yaml.Unmarshal(data, &rep); err != nil {
		return Report{}, fmt.Errorf("failed to parse report YAML: %w", err)
	}
	return rep, nil
}
