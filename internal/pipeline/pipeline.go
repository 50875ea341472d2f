package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/panotiler/internal/canvas"
	"github.com/lehigh-university-libraries/panotiler/internal/config"
	"github.com/lehigh-university-libraries/panotiler/internal/geotag"
	"github.com/lehigh-university-libraries/panotiler/internal/imageio"
	"github.com/lehigh-university-libraries/panotiler/internal/manifest"
	"github.com/lehigh-university-libraries/panotiler/internal/models"
	"github.com/lehigh-university-libraries/panotiler/internal/parallel"
	"github.com/lehigh-university-libraries/panotiler/internal/report"
	"github.com/lehigh-university-libraries/panotiler/internal/thumbnail"
	"github.com/lehigh-university-libraries/panotiler/internal/tiles"
)

var (
	ErrInputRoot  = errors.New("input root unavailable")
	ErrOutputRoot = errors.New("output root unavailable")
)

// ImageFailure is a panorama left out of its group
type ImageFailure struct {
	Group string
	Path  string
	Err   error
}

// RunResult describes a finished run
type RunResult struct {
	RunID        string
	Groups       []models.Group
	Failures     []ImageFailure
	ManifestPath string
	IndexPath    string
	ReportPath   string
	Started      time.Time
	Finished     time.Time
}

// Processor runs the tiling pipeline with a fixed configuration
type Processor struct {
	cfg config.Config
}

// New creates a processor. cfg is expected to be validated.
func New(cfg config.Config) *Processor {
	return &Processor{cfg: cfg}
}

func (p *Processor) tileOptions() tiles.Options {
	return tiles.Options{
		Grid:      tiles.Grid{Rows: p.cfg.TileRows, Columns: p.cfg.TileColumns},
		Extension: p.cfg.OutputExtension,
		Quality:   p.cfg.JPEGQuality,
		Workers:   p.cfg.Workers,
	}
}

// ProcessImage runs one panorama through the pipeline, writing its thumbnail
// and tiles under groupDir/<stem>. Only decode and directory failures return
// an error; thumbnail, tile and geotag problems are logged and reflected in
// the record.
func (p *Processor) ProcessImage(ctx context.Context, path, groupDir string) (models.ImageRecord, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	img, err := imageio.Open(path)
	if err != nil {
		return models.ImageRecord{}, err
	}

	b := img.Bounds()
	stats := models.TileStats{
		SourcePath: path,
		Width:      b.Dx(),
		Height:     b.Dy(),
	}

	// must exist before thumbnail and tile writes start
	imageDir := filepath.Join(groupDir, stem)
	if err := os.MkdirAll(imageDir, 0755); err != nil {
		return models.ImageRecord{}, fmt.Errorf("failed to create image directory: %w", err)
	}

	thumbPath := filepath.Join(imageDir, thumbnail.Name(stem, p.cfg.OutputExtension))
	if err := thumbnail.Generate(img, thumbPath, p.cfg.ThumbnailWidth, p.cfg.ThumbnailHeight, p.cfg.OutputExtension, p.cfg.JPEGQuality); err != nil {
		slog.Warn("Failed to write thumbnail", "path", thumbPath, "error", err)
	} else {
		stats.Thumbnail = true
		slog.Debug("Thumbnail written", "path", thumbPath)
	}

	cv, err := canvas.Normalize(img, p.cfg.MinSide)
	switch {
	case errors.Is(err, canvas.ErrNotEligible):
		slog.Info("Panorama not eligible for tiling, skipped", "path", path, "width", stats.Width, "height", stats.Height)
	case err != nil:
		slog.Warn("Failed to normalize panorama", "path", path, "error", err)
	default:
		stats.Eligible = true
		res := tiles.Slice(ctx, cv.Image, imageDir, p.tileOptions())
		stats.TilesWritten = res.Written
		stats.TilesFailed = len(res.Failed)
		slog.Debug("Panorama tiled", "path", path, "tile_size", res.TileSize, "offset", cv.Offset, "written", res.Written, "failed", len(res.Failed))
	}

	loc := geotag.ReadFile(path, p.cfg.SignedCoordinates)

	// usetile follows eligibility; older manifests always said true
	useTile := stats.Eligible || p.cfg.LegacyUseTile

	return models.NewImageRecord(stem, useTile, loc.Vector(), stats), nil
}

// ListImages returns the files directly inside dir whose extension matches the
// configured input extensions, sorted by name.
func (p *Processor) ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read group directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !p.cfg.MatchesInput(filepath.Ext(e.Name())) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// ProcessGroup tiles every panorama in dir in parallel and returns the group
// record. Images that fail are logged, left out of the group and returned as
// failures.
func (p *Processor) ProcessGroup(ctx context.Context, dir, outputRoot string) (models.Group, []ImageFailure, error) {
	name := filepath.Base(dir)

	files, err := p.ListImages(dir)
	if err != nil {
		return models.Group{}, nil, err
	}

	groupDir := filepath.Join(outputRoot, name)
	if err := os.MkdirAll(groupDir, 0755); err != nil {
		return models.Group{}, nil, fmt.Errorf("failed to create group directory: %w", err)
	}

	group := models.Group{Name: name, Images: []models.ImageRecord{}}
	if len(files) == 0 {
		slog.Warn("No panoramas found in group", "group", name, "path", dir)
		return group, nil, nil
	}

	slog.Info("Processing group", "group", name, "images", len(files))

	results := parallel.Map(ctx, p.cfg.Workers, files, func(ctx context.Context, path string) (models.ImageRecord, error) {
		return p.ProcessImage(ctx, path, groupDir)
	})

	var failures []ImageFailure
	for _, r := range results {
		if r.Err != nil {
			slog.Warn("Skipping panorama", "group", name, "path", files[r.Index], "error", r.Err)
			failures = append(failures, ImageFailure{Group: name, Path: files[r.Index], Err: r.Err})
			continue
		}
		group.Images = append(group.Images, r.Value)
	}

	slog.Info("Group processed", "group", name, "images", len(group.Images), "skipped", len(failures))
	return group, failures, nil
}

// Run processes every group under opts.Input into opts.Output and writes the
// manifest. Groups run one after another in name order.
func (p *Processor) Run(ctx context.Context, opts config.Options) (*RunResult, error) {
	result := &RunResult{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	logger := slog.With("run_id", result.RunID)

	info, err := os.Stat(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInputRoot, opts.Input)
	}

	entries, err := os.ReadDir(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputRoot, err)
	}

	if err := os.MkdirAll(opts.Output, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputRoot, err)
	}

	logger.Info("Starting panorama tiling", "input", opts.Input, "output", opts.Output, "workers", p.cfg.Workers)

	result.Groups = []models.Group{}
	for _, e := range entries {
		dir := filepath.Join(opts.Input, e.Name())
		if !isDir(dir, e) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted: %w", err)
		}

		group, failures, err := p.ProcessGroup(ctx, dir, opts.Output)
		if err != nil {
			logger.Warn("Skipping group", "path", dir, "error", err)
			continue
		}
		result.Groups = append(result.Groups, group)
		result.Failures = append(result.Failures, failures...)
	}

	result.ManifestPath, err = manifest.Write(opts.Output, p.cfg.ManifestName, result.Groups)
	if err != nil {
		return nil, err
	}

	if p.cfg.ParquetIndex {
		indexPath := filepath.Join(opts.Output, manifest.IndexName(p.cfg.ManifestName))
		if err := manifest.WriteIndex(indexPath, result.Groups); err != nil {
			logger.Warn("Failed to write parquet index", "path", indexPath, "error", err)
		} else {
			result.IndexPath = indexPath
		}
	}

	result.Finished = time.Now()

	if p.cfg.Report {
		rep := report.Build(result.RunID, opts.Input, opts.Output, p.cfg, result.Started, result.Finished,
			result.ManifestPath, result.Groups, reportFailures(result.Failures))
		if path, err := report.Save(opts.Output, rep); err != nil {
			logger.Warn("Failed to write run report", "error", err)
		} else {
			result.ReportPath = path
		}
	}

	logger.Info("Panorama tiling complete",
		"groups", len(result.Groups),
		"skipped_images", len(result.Failures),
		"manifest", result.ManifestPath,
		"elapsed", result.Finished.Sub(result.Started).Round(time.Millisecond))

	return result, nil
}

func isDir(path string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func reportFailures(failures []ImageFailure) []report.Failure {
	out := make([]report.Failure, 0, len(failures))
	for _, f := range failures {
		out = append(out, report.Failure{Group: f.Group, Path: f.Path, Err: f.Err})
	}
	return out
}
