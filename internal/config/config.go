package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	// Environment variables consulted when --input/--output are not given
	EnvInput  = "PANOTILER_INPUT"
	EnvOutput = "PANOTILER_OUTPUT"
)

// Config holds the tiling parameters for a run
type Config struct {
	// Minimum panorama width in pixels before tiles are cut
	MinSide int `yaml:"min_side"`

	TileRows    int `yaml:"tile_rows"`
	TileColumns int `yaml:"tile_columns"`

	ThumbnailWidth  int `yaml:"thumbnail_width"`
	ThumbnailHeight int `yaml:"thumbnail_height"`

	InputExtensions []string `yaml:"input_extensions"`
	OutputExtension string   `yaml:"output_extension"`
	JPEGQuality     int      `yaml:"jpeg_quality"`

	ManifestName string `yaml:"manifest_name"`

	// Workers bounds each level of fan-out (images per group, tiles per image)
	Workers int `yaml:"workers"`

	// Apply GPS hemisphere refs to the decoded coordinates
	SignedCoordinates bool `yaml:"signed_coordinates"`

	// Report usetile=true for every image, like older qindex.json files did
	LegacyUseTile bool `yaml:"legacy_usetile"`

	ParquetIndex bool `yaml:"parquet_index"`
	Report       bool `yaml:"report"`
}

// Default returns the stock configuration: 5000px minimum width, a 4x8 grid and
// 1024x512 previews.
func Default() Config {
	return Config{
		MinSide:         5000,
		TileRows:        4,
		TileColumns:     8,
		ThumbnailWidth:  1024,
		ThumbnailHeight: 512,
		InputExtensions: []string{".jpg", ".jpeg"},
		OutputExtension: "jpg",
		JPEGQuality:     90,
		ManifestName:    "qindex.json",
		Workers:         runtime.NumCPU(),
	}
}

// Load reads a YAML config file on top of the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	expanded, err := ExpandPath(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", expanded, err)
	}

	return cfg, nil
}

// Validate checks that the grid fits the 2:1 canvas and all sizes are usable
func (c Config) Validate() error {
	var errs []error

	if c.MinSide < 1 {
		errs = append(errs, fmt.Errorf("min_side must be positive, got %d", c.MinSide))
	}
	if c.TileRows < 1 || c.TileColumns < 1 {
		errs = append(errs, fmt.Errorf("tile grid must be at least 1x1, got %dx%d", c.TileRows, c.TileColumns))
	} else if c.TileRows*2 > c.TileColumns {
		// rows * (W/columns) must stay within the W/2 canvas height
		errs = append(errs, fmt.Errorf("tile_rows*2 must not exceed tile_columns, got %dx%d", c.TileRows, c.TileColumns))
	}
	if c.ThumbnailWidth < 1 || c.ThumbnailHeight < 1 {
		errs = append(errs, fmt.Errorf("thumbnail size must be positive, got %dx%d", c.ThumbnailWidth, c.ThumbnailHeight))
	}
	if len(c.InputExtensions) == 0 {
		errs = append(errs, errors.New("input_extensions must not be empty"))
	}
	if c.OutputExtension == "" {
		errs = append(errs, errors.New("output_extension must not be empty"))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("jpeg_quality must be within 1-100, got %d", c.JPEGQuality))
	}
	if c.ManifestName == "" {
		errs = append(errs, errors.New("manifest_name must not be empty"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}

	return errors.Join(errs...)
}

// MatchesInput reports whether a file extension is one of the configured input
// extensions, ignoring case.
func (c Config) MatchesInput(ext string) bool {
	for _, want := range c.InputExtensions {
		if !strings.HasPrefix(want, ".") {
			want = "." + want
		}
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// Options are the two paths a run needs. The JSON form is what a host process
// passes when embedding the tiler.
type Options struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ParseOptions decodes a JSON options string such as
// {"input": "/data/panos", "output": "/data/tiles"}.
func ParseOptions(raw string) (Options, error) {
	var opts Options
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return Options{}, fmt.Errorf("failed to parse options JSON: %w", err)
	}
	return opts, nil
}

// Resolve fills empty paths from the environment and expands "~".
func (o Options) Resolve() (Options, error) {
	if o.Input == "" {
		o.Input = os.Getenv(EnvInput)
	}
	if o.Output == "" {
		o.Output = os.Getenv(EnvOutput)
	}
	if o.Input == "" {
		return Options{}, fmt.Errorf("input path is required (flag or %s)", EnvInput)
	}
	if o.Output == "" {
		return Options{}, fmt.Errorf("output path is required (flag or %s)", EnvOutput)
	}

	var err error
	if o.Input, err = ExpandPath(o.Input); err != nil {
		return Options{}, err
	}
	if o.Output, err = ExpandPath(o.Output); err != nil {
		return Options{}, err
	}
	return o, nil
}

// ExpandPath expands a leading "~" to the user's home directory
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	return expanded, nil
}
