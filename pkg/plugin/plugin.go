// Package plugin exposes the tiler to host processes that drive it with a
// JSON options string instead of the command line.
package plugin

import (
	"context"
	"log/slog"

	"github.com/lehigh-university-libraries/panotiler/internal/config"
	"github.com/lehigh-university-libraries/panotiler/internal/pipeline"
)

// Execute runs a full slice with the default configuration. options is a JSON
// object such as {"input": "/data/panos", "output": "/data/tiles"}; empty paths
// fall back to PANOTILER_INPUT and PANOTILER_OUTPUT. Only success or failure is
// reported back, details go to the log.
func Execute(ctx context.Context, options string) error {
	opts, err := config.ParseOptions(options)
	if err != nil {
		return err
	}
	if opts, err = opts.Resolve(); err != nil {
		return err
	}

	res, err := pipeline.New(config.Default()).Run(ctx, opts)
	if err != nil {
		slog.Error("Panorama tiling failed", "input", opts.Input, "output", opts.Output, "error", err)
		return err
	}

	slog.Debug("Plugin run finished", "run_id", res.RunID, "manifest", res.ManifestPath)
	return nil
}
