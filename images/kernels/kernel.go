// Package kernels implements the fixed 3x3 convolution filters and the
// gradient-magnitude operator applied to the background image.
//
// Every filter reads its neighborhood through a Sampler, so the same code
// serves both the per-pixel render path (texture lookups) and whole-image
// filtering (direct buffer indexing).
package kernels

import (
	"strings"

	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-composite/images"
)

// Kind selects one of the background filters. A single value means at most
// one filter can ever be active.
type Kind int

const (
	// KindNone samples the background unfiltered.
	KindNone Kind = iota
	// KindSmooth is a 3x3 box blur.
	KindSmooth
	// KindSharpen boosts the center against its orthogonal neighbors.
	KindSharpen
	// KindLaplacian is the 4-neighbor Laplacian with opaque output.
	KindLaplacian
	// KindGradient is the central-difference gradient magnitude with opaque output.
	KindGradient
)

var kindNames = map[Kind]string{
	KindNone:      "none",
	KindSmooth:    "smooth",
	KindSharpen:   "sharpen",
	KindLaplacian: "laplacian",
	KindGradient:  "gradient",
}

// String returns the lower-case name used in flags and preset files.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "none"
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind maps a filter name to its Kind.
//
// Returns:
// - The kind and true, or KindNone and false for unknown names.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return KindNone, false
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to
// KindNone.
func (k *Kind) UnmarshalText(text []byte) error {
	*k, _ = ParseKind(string(text))
	return nil
}

// Sampler returns the source color at an integer offset from the pixel being
// shaded. dx grows to the right and dy grows upward, as in texture space.
// Offsets passed by this package are always in [-1, 1].
type Sampler func(dx, dy int) images.Pixel

// Kernel is a 3x3 weight matrix with its normalization divisor.
// Weights[dy+1][dx+1] is the weight of the sample at offset (dx, dy).
type Kernel struct {
	Weights [3][3]float32
	Divisor float32
}

var (
	// SmoothKernel is a box blur.
	SmoothKernel = Kernel{
		Weights: [3][3]float32{
			{1, 1, 1},
			{1, 1, 1},
			{1, 1, 1},
		},
		Divisor: 9,
	}

	// SharpenKernel adds the Laplacian back onto the source.
	SharpenKernel = Kernel{
		Weights: [3][3]float32{
			{0, -1, 0},
			{-1, 5, -1},
			{0, -1, 0},
		},
		Divisor: 1,
	}

	// LaplacianKernel is the 4-neighbor discrete Laplacian.
	LaplacianKernel = Kernel{
		Weights: [3][3]float32{
			{0, -1, 0},
			{-1, 4, -1},
			{0, -1, 0},
		},
		Divisor: 1,
	}
)

// ForKind returns the convolution kernel behind a filter kind. Gradient and
// None have no kernel.
func ForKind(k Kind) (Kernel, bool) {
	switch k {
	case KindSmooth:
		return SmoothKernel, true
	case KindSharpen:
		return SharpenKernel, true
	case KindLaplacian:
		return LaplacianKernel, true
	default:
		return Kernel{}, false
	}
}

// Convolve returns the weighted sum of the nine samples around the current
// pixel divided by the kernel divisor. All four channels are filtered.
func Convolve(k Kernel, sample Sampler) images.Pixel {
	var sum images.Pixel
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			w := k.Weights[dy+1][dx+1]
			if w == 0 {
				continue
			}
			sum = sum.Add(sample(dx, dy).Scale(w))
		}
	}
	d := k.Divisor
	return images.Pixel{R: sum.R / d, G: sum.G / d, B: sum.B / d, A: sum.A / d}
}

// Laplacian convolves with LaplacianKernel and forces the result opaque.
func Laplacian(sample Sampler) images.Pixel {
	return Convolve(LaplacianKernel, sample).WithAlpha(1)
}

// Gradient computes the per-channel magnitude of the central-difference
// gradient, sqrt(dx² + dy²), and forces the result opaque.
func Gradient(sample Sampler) images.Pixel {
	dy := sample(0, 1).Sub(sample(0, -1)).Scale(0.5)
	dx := sample(1, 0).Sub(sample(-1, 0)).Scale(0.5)

	sq := dy.Mul(dy).Add(dx.Mul(dx))
	return images.Pixel{
		R: math32.Sqrt(sq.R),
		G: math32.Sqrt(sq.G),
		B: math32.Sqrt(sq.B),
		A: 1,
	}
}

// Filter dispatches on kind. KindNone, and any undefined kind, returns the
// unfiltered center sample.
func Filter(kind Kind, sample Sampler) images.Pixel {
	switch kind {
	case KindSmooth:
		return Convolve(SmoothKernel, sample)
	case KindSharpen:
		return Convolve(SharpenKernel, sample)
	case KindLaplacian:
		return Laplacian(sample)
	case KindGradient:
		return Gradient(sample)
	default:
		return sample(0, 0)
	}
}
