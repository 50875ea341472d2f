package tilecmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/panotiler/internal/config"
	"github.com/lehigh-university-libraries/panotiler/internal/pipeline"
)

func executeSlice(ctx context.Context, w io.Writer, cfg config.Config, opts config.Options) error {
	res, err := pipeline.New(cfg).Run(ctx, opts)
	if err != nil {
		return err
	}

	images := 0
	tilesWritten := 0
	for _, g := range res.Groups {
		images += len(g.Images)
		for _, img := range g.Images {
			tilesWritten += img.Stats.TilesWritten
		}
	}

	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Run:       %s\n", res.RunID)
	fmt.Fprintf(w, "Groups:    %d\n", len(res.Groups))
	fmt.Fprintf(w, "Images:    %d (%d skipped)\n", images, len(res.Failures))
	fmt.Fprintf(w, "Tiles:     %d\n", tilesWritten)
	fmt.Fprintf(w, "Manifest:  %s\n", res.ManifestPath)
	if res.IndexPath != "" {
		fmt.Fprintf(w, "Index:     %s\n", res.IndexPath)
	}
	if res.ReportPath != "" {
		fmt.Fprintf(w, "Report:    %s\n", res.ReportPath)
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))

	for _, f := range res.Failures {
		fmt.Fprintf(w, "skipped %s: %v\n", f.Path, f.Err)
	}

	return nil
}
