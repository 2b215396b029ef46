// Package params defines the per-frame parameter snapshot consumed by the
// compositing pipeline, together with the clamping rules and slider
// conversions used by the control surfaces.
package params

import (
	"log/slog"

	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
)

// Parameter bounds. Out-of-range values are clamped to these, never rejected.
const (
	MinContrast   float32 = -1
	MaxContrast   float32 = 1
	MinBrightness float32 = 0
	MaxBrightness float32 = 10
)

// Slider ranges of the control panel.
const (
	ContrastSliderMin   = -100
	ContrastSliderMax   = 100
	BrightnessSliderMin = 0
	BrightnessSliderMax = 100
)

// FilterParameters is an immutable snapshot of every control that affects a
// render. Values are copied, never shared.
type FilterParameters struct {
	// BlendEnabled alpha-blends the foreground over the background. It wins
	// over BackgroundOnly.
	BlendEnabled bool
	// BackgroundOnly renders the background through Filter.
	BackgroundOnly bool
	// Filter is the single active background filter.
	Filter kernels.Kind
	// GrayScale and Sepia are applied after compositing, grayscale first.
	GrayScale bool
	Sepia     bool
	// Contrast is in [-1, 1]; 0 is neutral.
	Contrast float32
	// Brightness is a multiplier in [0, 10]; 1 is neutral.
	Brightness float32
	// GlobalAlpha is the alpha written by the sepia transform.
	GlobalAlpha float32
	// Resolution is the output surface size in pixels.
	Resolution images.Resolution
}

// Default returns the neutral snapshot: no mode flag, no filter, neutral
// contrast and brightness, opaque sepia output and the default resolution.
func Default() FilterParameters {
	return FilterParameters{
		Filter:      kernels.KindNone,
		Contrast:    0,
		Brightness:  1,
		GlobalAlpha: 1,
		Resolution:  images.DefaultResolution,
	}
}

// Clamped returns a copy of p with every field forced into its valid range.
//
// - Contrast is clamped to [-1, 1], brightness to [0, 10] and global alpha
// to [0, 1]. NaN falls back to the Default value.
// - An undefined filter kind becomes KindNone.
// - Each resolution dimension is raised to at least 1.
func (p FilterParameters) Clamped() FilterParameters {
	d := Default()

	p.Contrast = clampOr(p.Contrast, MinContrast, MaxContrast, d.Contrast)
	p.Brightness = clampOr(p.Brightness, MinBrightness, MaxBrightness, d.Brightness)
	p.GlobalAlpha = clampOr(p.GlobalAlpha, 0, 1, d.GlobalAlpha)

	if !p.Filter.Valid() {
		p.Filter = kernels.KindNone
	}
	if p.Resolution.Width < 1 {
		p.Resolution.Width = 1
	}
	if p.Resolution.Height < 1 {
		p.Resolution.Height = 1
	}
	return p
}

// Texel returns the normalized size of one output pixel, (1/width, 1/height).
func (p FilterParameters) Texel() (float32, float32) {
	x, y := p.Resolution.Texel()
	return float32(x), float32(y)
}

// LogValue implements slog.LogValuer.
func (p FilterParameters) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("blend", p.BlendEnabled),
		slog.Bool("background_only", p.BackgroundOnly),
		slog.String("filter", p.Filter.String()),
		slog.Bool("grayscale", p.GrayScale),
		slog.Bool("sepia", p.Sepia),
		slog.Float64("contrast", float64(p.Contrast)),
		slog.Float64("brightness", float64(p.Brightness)),
		slog.String("resolution", p.Resolution.String()),
	)
}

// ContrastFromSlider converts a [-100, 100] slider position to a contrast
// value. Positions outside the slider range are clamped first.
func ContrastFromSlider(v int) float32 {
	return float32(clampInt(v, ContrastSliderMin, ContrastSliderMax)) / 100
}

// BrightnessFromSlider converts a [0, 100] slider position to a brightness
// multiplier.
func BrightnessFromSlider(v int) float32 {
	return float32(clampInt(v, BrightnessSliderMin, BrightnessSliderMax)) / 10
}

// ContrastToSlider is the inverse of ContrastFromSlider, rounded to the
// nearest position.
func ContrastToSlider(c float32) int {
	return clampInt(int(math32.Floor(c*100+0.5)), ContrastSliderMin, ContrastSliderMax)
}

// BrightnessToSlider is the inverse of BrightnessFromSlider.
func BrightnessToSlider(b float32) int {
	return clampInt(int(math32.Floor(b*10+0.5)), BrightnessSliderMin, BrightnessSliderMax)
}

func clampOr(v, lo, hi, fallback float32) float32 {
	if math32.IsNaN(v) {
		return fallback
	}
	return images.Clamp(v, lo, hi)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
