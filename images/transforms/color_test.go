package transforms

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nvr-ai/go-composite/images"
)

func randomPixels(n int) []images.Pixel {
	rng := rand.New(rand.NewSource(7))
	out := make([]images.Pixel, n)
	for i := range out {
		out[i] = images.Pixel{R: rng.Float32(), G: rng.Float32(), B: rng.Float32(), A: rng.Float32()}
	}
	return out
}

func TestGrayscaleIsIdempotent(t *testing.T) {
	for _, p := range randomPixels(200) {
		once := Grayscale(p)
		twice := Grayscale(once)

		assert.InDelta(t, once.R, twice.R, 1e-6)
		assert.InDelta(t, once.G, twice.G, 1e-6)
		assert.InDelta(t, once.B, twice.B, 1e-6)
		assert.Equal(t, p.A, twice.A)
	}
}

func TestGrayscaleWeights(t *testing.T) {
	assert.InDelta(t, 0.2126, Grayscale(images.Pixel{R: 1}).G, 1e-6)
	assert.InDelta(t, 0.7152, Grayscale(images.Pixel{G: 1}).B, 1e-6)
	assert.InDelta(t, 0.0722, Grayscale(images.Pixel{B: 1}).R, 1e-6)
	assert.InDelta(t, 1, Luma(images.Pixel{R: 1, G: 1, B: 1}), 1e-6)
}

func TestSepiaOnRed(t *testing.T) {
	for _, alpha := range []float32{1, 0.4, 0} {
		got := Sepia(images.Pixel{R: 1, A: 1}, alpha)
		assert.InDelta(t, 0.393, got.R, 1e-6)
		assert.InDelta(t, 0.349, got.G, 1e-6)
		assert.InDelta(t, 0.272, got.B, 1e-6)
		assert.Equal(t, alpha, got.A)
	}
}

func TestSepiaIgnoresSourceAlpha(t *testing.T) {
	got := Sepia(images.Pixel{G: 1, A: 0.1}, 1)
	assert.InDelta(t, 0.769, got.R, 1e-6)
	assert.Equal(t, float32(1), got.A)
}

func TestContrastBrightnessIdentity(t *testing.T) {
	for _, p := range randomPixels(200) {
		got := ContrastBrightness(p, 0, 1)
		assert.InDelta(t, p.R, got.R, 1e-6)
		assert.InDelta(t, p.G, got.G, 1e-6)
		assert.InDelta(t, p.B, got.B, 1e-6)
		assert.Equal(t, p.A, got.A)
	}
}

func TestContrastBrightness(t *testing.T) {
	tests := []struct {
		name       string
		in         images.Pixel
		contrast   float32
		brightness float32
		want       images.Pixel
	}{
		{"zero brightness is black", images.Pixel{R: 0.8, G: 0.3, B: 1, A: 0.5}, 0, 0, images.Pixel{A: 0.5}},
		{"max contrast doubles distance", images.Pixel{R: 0.75, G: 0.25, B: 0.5, A: 1}, 1, 1, images.Pixel{R: 1, G: 0, B: 0.5, A: 1}},
		{"min contrast flattens", images.Pixel{R: 0.9, G: 0.1, B: 0.3, A: 1}, -1, 1, images.Pixel{R: 0.5, G: 0.5, B: 0.5, A: 1}},
		{"brightness scales", images.Pixel{R: 0.25, G: 0.5, B: 0, A: 1}, 0, 2, images.Pixel{R: 0.5, G: 1, B: 0, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContrastBrightness(tt.in, tt.contrast, tt.brightness)
			assert.InDelta(t, tt.want.R, got.R, 1e-6)
			assert.InDelta(t, tt.want.G, got.G, 1e-6)
			assert.InDelta(t, tt.want.B, got.B, 1e-6)
			assert.Equal(t, tt.want.A, got.A)
		})
	}
}
