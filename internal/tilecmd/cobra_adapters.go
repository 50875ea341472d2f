package tilecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/panotiler/internal/config"
)

// NewSliceCmd creates the slice command that tiles every group under an input root
func NewSliceCmd() *cobra.Command {
	var input string
	var output string
	var configPath string
	var workers int
	var minSide int
	var parquetIndex bool
	var writeReport bool

	cmd := &cobra.Command{
		Use:   "slice",
		Short: "Cut panoramas into tiles and write the qindex.json manifest",
		Long: `Slice walks every group directory under the input root, normalizes each
panorama to a 2:1 canvas, cuts it into a grid of square tiles, writes a 1024x512
preview and records GPS metadata in a manifest at the output root.

Input and output default to PANOTILER_INPUT and PANOTILER_OUTPUT, which may also
be set in a .env file.`,
		Example: `  # Tile everything under ./panos into ./tiles
  panotiler slice -i ./panos -o ./tiles

  # Use a config file and also write the parquet index and a run report
  panotiler slice -i ./panos -o ./tiles --config panotiler.yaml --parquet --report

  # Lower the width threshold for test material
  panotiler slice -i ./panos -o ./tiles --min-side 2000 --workers 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("min-side") {
				cfg.MinSide = minSide
			}
			if parquetIndex {
				cfg.ParquetIndex = true
			}
			if writeReport {
				cfg.Report = true
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			opts, err := config.Options{Input: input, Output: output}.Resolve()
			if err != nil {
				return err
			}

			return executeSlice(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input root holding one directory per group")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output root for tiles, previews and the manifest")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent images per group and tiles per image (default: number of CPUs)")
	cmd.Flags().IntVar(&minSide, "min-side", 0, "Minimum panorama width for tiling (default: 5000)")
	cmd.Flags().BoolVar(&parquetIndex, "parquet", false, "Also write a flattened parquet index of all images")
	cmd.Flags().BoolVar(&writeReport, "report", false, "Also write a YAML run report")

	return cmd
}

// NewExecCmd creates the exec command that runs a slice from a JSON options string
func NewExecCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "exec OPTIONS",
		Short: "Run a slice from a JSON options string",
		Long: `Exec takes the same JSON options string a host process passes when embedding
the tiler, e.g. {"input": "/data/panos", "output": "/data/tiles"}.

Empty paths fall back to PANOTILER_INPUT and PANOTILER_OUTPUT.`,
		Example: `  panotiler exec '{"input": "./panos", "output": "./tiles"}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			opts, err := config.ParseOptions(args[0])
			if err != nil {
				return err
			}
			if opts, err = opts.Resolve(); err != nil {
				return err
			}

			return executeSlice(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	return cmd
}

// NewGeotagCmd creates the geotag command for checking GPS metadata
func NewGeotagCmd() *cobra.Command {
	var signed bool

	cmd := &cobra.Command{
		Use:   "geotag FILE...",
		Short: "Print the GPS location recorded in panoramas",
		Long: `Geotag decodes the EXIF GPS tags of each file and prints the [lon, lat, alt]
vector that slice would record, followed by any tag that was missing or broken.`,
		Example: `  panotiler geotag ./panos/A/*.jpg

  # Apply N/S, E/W and altitude refs
  panotiler geotag --signed ./panos/A/pano.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeGeotag(cmd.OutOrStdout(), args, signed)
		},
	}

	cmd.Flags().BoolVar(&signed, "signed", false, "Negate southern, western and below-sea-level values")

	return cmd
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "inspect PATH",
		Short: "Summarize a qindex.json manifest or qindex.parquet index",
		Long: `Inspect prints each group and its images from a manifest written by slice.
Files ending in .parquet are read as the flattened index.`,
		Example: `  panotiler inspect ./tiles/qindex.json

  # Show every row of the parquet index
  panotiler inspect ./tiles/qindex.parquet --limit 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeInspect(cmd.OutOrStdout(), args[0], limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of images to list per group, or rows for parquet (0 for all)")

	return cmd
}
