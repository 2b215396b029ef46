// Package pipeline evaluates the full per-pixel shading chain.
package pipeline

import (
	"github.com/nvr-ai/go-composite/compositor"
	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
	"github.com/nvr-ai/go-composite/images/transforms"
	"github.com/nvr-ai/go-composite/params"
)

// Shade computes the final color of one output pixel.
//
// The stages run in a fixed order:
//  1. composite (blend, filter or passthrough)
//  2. grayscale, if enabled
//  3. sepia, if enabled
//  4. contrast/brightness, always
//
// When both grayscale and sepia are set, sepia is applied to the grayscale
// result.
//
// Arguments:
// - bg: Background sampler centered on the pixel.
// - fg: Foreground sampler centered on the pixel.
// - p: The frame's parameter snapshot.
//
// Returns:
// - The unclamped final color.
func Shade(bg, fg kernels.Sampler, p params.FilterParameters) images.Pixel {
	c := compositor.Composite(bg, fg, p)
	return Finish(c, p)
}

// Finish runs stages 2 to 4 of Shade on an already composited color.
func Finish(c images.Pixel, p params.FilterParameters) images.Pixel {
	if p.GrayScale {
		c = transforms.Grayscale(c)
	}
	if p.Sepia {
		c = transforms.Sepia(c, p.GlobalAlpha)
	}
	return transforms.ContrastBrightness(c, p.Contrast, p.Brightness)
}
