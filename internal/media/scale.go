package media

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// extractionSize returns the dimensions to request from the backend.
// Zero means native size.
func extractionSize(maxW, maxH int, scaled bool) (int, int) {
	if maxW > 0 && maxH > 0 && scaled {
		return maxW, maxH
	}
	return 0, 0
}

// TargetDimensions computes output dimensions for a native frame. With one
// axis constrained the other follows the native aspect ratio; with both
// constrained they are used as given.
func TargetDimensions(nativeW, nativeH, maxW, maxH int) (int, int) {
	switch {
	case maxW == 0 && maxH == 0:
		return nativeW, nativeH
	case maxW == 0:
		w := int(math.Round(float64(maxH) / float64(nativeH) * float64(nativeW)))
		return max(w, 1), maxH
	case maxH == 0:
		h := int(math.Round(float64(maxW) / float64(nativeW) * float64(nativeH)))
		return maxW, max(h, 1)
	default:
		return maxW, maxH
	}
}

// scaleImage resizes img to the requested bounds. Images already at the
// target size are returned unchanged.
func scaleImage(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := TargetDimensions(b.Dx(), b.Dy(), maxW, maxH)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}
