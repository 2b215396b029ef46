// Package compositor combines the background and foreground samples for one
// output pixel.
package compositor

import (
	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
	"github.com/nvr-ai/go-composite/params"
)

// Mode is the rendering path chosen for a frame.
type Mode int

const (
	// ModePassthrough returns the raw background sample.
	ModePassthrough Mode = iota
	// ModeBlend alpha-blends the foreground over the background.
	ModeBlend
	// ModeFilter runs the background through the selected filter.
	ModeFilter
)

// String returns the preset name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeBlend:
		return params.ModeNameBlend
	case ModeFilter:
		return params.ModeNameBackground
	default:
		return params.ModeNamePassthrough
	}
}

// ResolveMode picks the mode from the two control flags.
// Blend wins over Filter, and Filter wins over Passthrough.
func ResolveMode(blendEnabled, backgroundOnly bool) Mode {
	switch {
	case blendEnabled:
		return ModeBlend
	case backgroundOnly:
		return ModeFilter
	default:
		return ModePassthrough
	}
}

// ModeOf resolves the mode of a parameter snapshot.
func ModeOf(p params.FilterParameters) Mode {
	return ResolveMode(p.BlendEnabled, p.BackgroundOnly)
}

// Blend composites fg over bg with fg's alpha. The background is treated as
// opaque, so the result alpha is always 1.
func Blend(bg, fg images.Pixel) images.Pixel {
	inv := 1 - fg.A
	return images.Pixel{
		R: fg.R*fg.A + bg.R*inv,
		G: fg.G*fg.A + bg.G*inv,
		B: fg.B*fg.A + bg.B*inv,
		A: 1,
	}
}

// Composite produces the composited color of one output pixel.
//
// Arguments:
// - bg: Samples the background around the pixel.
// - fg: Samples the foreground around the pixel. Only the center is read.
// - p: The frame's parameter snapshot.
//
// Returns:
// - The composited color, before any color transform.
func Composite(bg, fg kernels.Sampler, p params.FilterParameters) images.Pixel {
	switch ModeOf(p) {
	case ModeBlend:
		return Blend(bg(0, 0), fg(0, 0))
	case ModeFilter:
		return kernels.Filter(p.Filter, bg)
	default:
		return bg(0, 0)
	}
}
