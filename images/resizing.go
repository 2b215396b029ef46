package images

import (
	"github.com/nfnt/resize"
)

// ResampleFilter defines the resampling algorithm used for boundary scaling.
type ResampleFilter int

const (
	// NearestNeighborFilter uses nearest-neighbor interpolation (fastest, lowest quality).
	NearestNeighborFilter ResampleFilter = iota
	// BilinearFilter uses bilinear interpolation (fast, good quality).
	BilinearFilter
	// BicubicFilter uses bicubic interpolation (slower, better quality).
	BicubicFilter
	// LanczosFilter uses Lanczos resampling with a=3 (slowest, best quality).
	LanczosFilter
	// MitchellNetravaliFilter uses Mitchell-Netravali cubic filter (balanced).
	MitchellNetravaliFilter
)

// interpolation maps each filter to its nfnt/resize implementation.
var interpolation = map[ResampleFilter]resize.InterpolationFunction{
	NearestNeighborFilter:   resize.NearestNeighbor,
	BilinearFilter:          resize.Bilinear,
	BicubicFilter:           resize.Bicubic,
	LanczosFilter:           resize.Lanczos3,
	MitchellNetravaliFilter: resize.MitchellNetravali,
}

// ParseResampleFilter maps a flag value to a filter. Unknown names map to bilinear.
func ParseResampleFilter(s string) ResampleFilter {
	switch s {
	case "nearest":
		return NearestNeighborFilter
	case "bicubic":
		return BicubicFilter
	case "lanczos":
		return LanczosFilter
	case "mitchell":
		return MitchellNetravaliFilter
	default:
		return BilinearFilter
	}
}

// Fit resamples img to exactly width x height.
//
// The compositing core never resamples: textures are stretched by normalized
// coordinates. Fit is the boundary-side alternative for callers that want the
// input pixel grid to match the output grid before rendering.
//
// Arguments:
// - img: The source image.
// - width: Target width in pixels.
// - height: Target height in pixels.
// - filter: Resampling filter to use.
//
// Returns:
// - A new image, or img itself when it already has the requested size or the
// size is invalid.
//
// @example
// fg = images.Fit(fg, bg.Width(), bg.Height(), images.LanczosFilter)
func Fit(img *Image, width, height int, filter ResampleFilter) *Image {
	if img == nil || width <= 0 || height <= 0 {
		return img
	}
	if img.Width() == width && img.Height() == height {
		return img
	}

	interp, ok := interpolation[filter]
	if !ok {
		interp = resize.Bilinear
	}

	return FromImage(resize.Resize(uint(width), uint(height), img.NRGBA(), interp))
}
