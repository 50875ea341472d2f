package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/panotiler/internal/tilecmd"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "panotiler",
		Short: "Panorama tiling tool for web-based 360 viewers",
		Long: `Panotiler turns folders of equirectangular panoramas into square tile pyramids,
low-resolution previews and a qindex.json manifest carrying each image's GPS location.

Each subdirectory of the input root is one group; its panoramas end up under
<output>/<group>/<image>/.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			setupLogging(verbose)
		},
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(tilecmd.NewSliceCmd())
	cmd.AddCommand(tilecmd.NewExecCmd())
	cmd.AddCommand(tilecmd.NewGeotagCmd())
	cmd.AddCommand(tilecmd.NewInspectCmd())

	return cmd
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
