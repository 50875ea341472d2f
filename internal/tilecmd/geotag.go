package tilecmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/lehigh-university-libraries/panotiler/internal/geotag"
)

func executeGeotag(w io.Writer, paths []string, signed bool) error {
	failed := 0
	for _, path := range paths {
		loc, fieldErrs, err := geotag.ReadPath(path, signed)
		if err != nil {
			slog.Warn("Failed to read EXIF", "path", path, "error", err)
			fmt.Fprintf(w, "%s: %v\n", path, err)
			failed++
			continue
		}

		fmt.Fprintf(w, "%s: [%g, %g, %g]\n", path, loc.Longitude, loc.Latitude, loc.Altitude)
		for _, fe := range fieldErrs {
			fmt.Fprintf(w, "  warning: %v\n", fe)
		}
	}

	if failed == len(paths) {
		return fmt.Errorf("no EXIF data could be read from %d file(s)", failed)
	}
	return nil
}
