// Package transforms holds the per-pixel color transforms applied after
// compositing: grayscale, sepia and contrast/brightness.
package transforms

import "github.com/nvr-ai/go-composite/images"

// Rec. 709 luma weights.
const (
	LumaR float32 = 0.2126
	LumaG float32 = 0.7152
	LumaB float32 = 0.0722
)

// SepiaMatrix maps (R, G, B) to sepia-toned (R', G', B'). Row i produces
// output channel i.
var SepiaMatrix = [3][3]float32{
	{0.393, 0.769, 0.189},
	{0.349, 0.686, 0.168},
	{0.272, 0.534, 0.131},
}

// Luma returns the Rec. 709 luminance of p's color channels.
func Luma(p images.Pixel) float32 {
	return p.R*LumaR + p.G*LumaG + p.B*LumaB
}

// Grayscale replaces every color channel with the pixel's luma. Alpha is
// unchanged.
func Grayscale(p images.Pixel) images.Pixel {
	l := Luma(p)
	return images.Pixel{R: l, G: l, B: l, A: p.A}
}

// Sepia applies SepiaMatrix to p's color channels.
//
// The output alpha is globalAlpha, not p.A. Callers that want the source
// alpha pass p.A explicitly.
//
// Arguments:
// - p: The input pixel.
// - globalAlpha: Alpha written to the result.
//
// @example
// out := transforms.Sepia(images.Pixel{R: 1, A: 1}, 1) // {0.393 0.349 0.272 1}
func Sepia(p images.Pixel, globalAlpha float32) images.Pixel {
	m := &SepiaMatrix
	return images.Pixel{
		R: m[0][0]*p.R + m[0][1]*p.G + m[0][2]*p.B,
		G: m[1][0]*p.R + m[1][1]*p.G + m[1][2]*p.B,
		B: m[2][0]*p.R + m[2][1]*p.G + m[2][2]*p.B,
		A: globalAlpha,
	}
}

// ContrastBrightness stretches the color channels around mid-gray and then
// scales them.
//
//	rgb = ((rgb - 0.5) * (contrast + 1) + 0.5) * brightness
//
// Brightness is multiplicative: 0 yields black and 1 is neutral. With
// contrast 0 and brightness 1 the transform is the identity. Alpha is
// unchanged.
func ContrastBrightness(p images.Pixel, contrast, brightness float32) images.Pixel {
	gain := contrast + 1
	adjust := func(v float32) float32 {
		return ((v-0.5)*gain + 0.5) * brightness
	}
	return images.Pixel{R: adjust(p.R), G: adjust(p.G), B: adjust(p.B), A: p.A}
}
