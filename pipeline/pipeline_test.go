package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
	"github.com/nvr-ai/go-composite/images/transforms"
	"github.com/nvr-ai/go-composite/params"
)

func constant(c images.Pixel) kernels.Sampler {
	return func(int, int) images.Pixel { return c }
}

func assertPixelInDelta(t *testing.T, want, got images.Pixel) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, 1e-6, "R")
	assert.InDelta(t, want.G, got.G, 1e-6, "G")
	assert.InDelta(t, want.B, got.B, 1e-6, "B")
	assert.InDelta(t, want.A, got.A, 1e-6, "A")
}

func TestShadeDefaultIsPassthrough(t *testing.T) {
	c := images.Pixel{R: 0.1, G: 0.5, B: 0.9, A: 0.3}
	assertPixelInDelta(t, c, Shade(constant(c), constant(images.Black), params.Default()))
}

func TestShadeGrayscaleThenSepia(t *testing.T) {
	c := images.Pixel{R: 0.8, G: 0.2, B: 0.4, A: 0.6}
	p := params.Default()
	p.GrayScale = true
	p.Sepia = true
	p.GlobalAlpha = 0.9

	want := transforms.Sepia(transforms.Grayscale(c), 0.9)
	assertPixelInDelta(t, want, Shade(constant(c), constant(images.Black), p))

	// The reverse order gives a different color, so the order is observable.
	reversed := transforms.Grayscale(transforms.Sepia(c, 0.9))
	assert.NotEqual(t, reversed.R, want.R)
}

func TestShadeContrastBrightnessRunsLast(t *testing.T) {
	c := images.Pixel{R: 1, A: 1}
	p := params.Default()
	p.Sepia = true
	p.Contrast = 1
	p.Brightness = 0.5

	want := transforms.ContrastBrightness(transforms.Sepia(c, 1), 1, 0.5)
	assertPixelInDelta(t, want, Shade(constant(c), constant(images.Black), p))
}

func TestShadeBrightnessZeroIsBlack(t *testing.T) {
	p := params.Default()
	p.BlendEnabled = true
	p.Brightness = 0

	got := Shade(constant(images.Pixel{R: 1, G: 1, B: 1, A: 1}), constant(images.Pixel{G: 1, A: 0.5}), p)
	assertPixelInDelta(t, images.Pixel{A: 1}, got)
}

func TestShadeFilterThenGrayscale(t *testing.T) {
	bg := func(dx, dy int) images.Pixel {
		if dx == 0 && dy == 0 {
			return images.Pixel{R: 1, A: 1}
		}
		return images.Black
	}
	p := params.Default()
	p.BackgroundOnly = true
	p.Filter = kernels.KindLaplacian
	p.GrayScale = true

	l := 4 * transforms.LumaR
	assertPixelInDelta(t, images.Pixel{R: l, G: l, B: l, A: 1}, Shade(bg, constant(images.Black), p))
}

func TestFinishMatchesShadeOnPassthrough(t *testing.T) {
	c := images.Pixel{R: 0.3, G: 0.7, B: 0.2, A: 1}
	p := params.Default()
	p.GrayScale = true
	p.Contrast = -0.5

	assert.Equal(t, Finish(c, p), Shade(constant(c), constant(images.Black), p))
}
