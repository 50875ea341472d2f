package thumbnail

import (
	"fmt"
	"image"

	"github.com/nfnt/resize"

	"github.com/lehigh-university-libraries/panotiler/internal/imageio"
)

// Name returns the preview file name for an image stem, e.g. pano_low.jpg
func Name(stem, ext string) string {
	return fmt.Sprintf("%s_low.%s", stem, ext)
}

// Resize scales img to exactly width x height with nearest-neighbour
// interpolation, ignoring the source aspect ratio.
func Resize(img image.Image, width, height int) image.Image {
	return resize.Resize(uint(width), uint(height), img, resize.NearestNeighbor)
}

// Generate writes a width x height preview of img to path
func Generate(img image.Image, path string, width, height int, ext string, quality int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("invalid thumbnail size %dx%d", width, height)
	}
	return imageio.Save(Resize(img, width, height), path, ext, quality)
}
