package params

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
)

func TestDefaultIsNeutral(t *testing.T) {
	p := Default()
	assert.False(t, p.BlendEnabled)
	assert.False(t, p.BackgroundOnly)
	assert.Equal(t, kernels.KindNone, p.Filter)
	assert.Equal(t, float32(0), p.Contrast)
	assert.Equal(t, float32(1), p.Brightness)
	assert.Equal(t, float32(1), p.GlobalAlpha)
	assert.Equal(t, images.DefaultResolution, p.Resolution)
	assert.Equal(t, p, p.Clamped())
}

func TestClamped(t *testing.T) {
	tests := []struct {
		name  string
		in    FilterParameters
		check func(t *testing.T, p FilterParameters)
	}{
		{
			name: "contrast above range",
			in:   FilterParameters{Contrast: 3, Brightness: 1, GlobalAlpha: 1, Resolution: images.DefaultResolution},
			check: func(t *testing.T, p FilterParameters) {
				assert.Equal(t, MaxContrast, p.Contrast)
			},
		},
		{
			name: "brightness below range",
			in:   FilterParameters{Brightness: -2, GlobalAlpha: 1, Resolution: images.DefaultResolution},
			check: func(t *testing.T, p FilterParameters) {
				assert.Equal(t, MinBrightness, p.Brightness)
			},
		},
		{
			name: "brightness above range",
			in:   FilterParameters{Brightness: 25, GlobalAlpha: 1, Resolution: images.DefaultResolution},
			check: func(t *testing.T, p FilterParameters) {
				assert.Equal(t, MaxBrightness, p.Brightness)
			},
		},
		{
			name: "nan falls back to default",
			in:   FilterParameters{Contrast: float32(math.NaN()), Brightness: float32(math.NaN()), GlobalAlpha: 1},
			check: func(t *testing.T, p FilterParameters) {
				assert.Equal(t, float32(0), p.Contrast)
				assert.Equal(t, float32(1), p.Brightness)
			},
		},
		{
			name: "global alpha",
			in:   FilterParameters{GlobalAlpha: 1.5},
			check: func(t *testing.T, p FilterParameters) {
				assert.Equal(t, float32(1), p.GlobalAlpha)
			},
		},
		{
			name: "unknown kind",
			in:   FilterParameters{Filter: kernels.Kind(99)},
			check: func(t *testing.T, p FilterParameters) {
				assert.Equal(t, kernels.KindNone, p.Filter)
			},
		},
		{
			name: "degenerate resolution",
			in:   FilterParameters{Resolution: images.Resolution{Width: 0, Height: -4}},
			check: func(t *testing.T, p FilterParameters) {
				assert.Equal(t, images.Resolution{Width: 1, Height: 1}, p.Resolution)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.in.Clamped())
		})
	}
}

func TestSliderConversions(t *testing.T) {
	assert.Equal(t, float32(-1), ContrastFromSlider(-100))
	assert.Equal(t, float32(0.5), ContrastFromSlider(50))
	assert.Equal(t, float32(1), ContrastFromSlider(250))
	assert.Equal(t, float32(0), BrightnessFromSlider(-5))
	assert.Equal(t, float32(1), BrightnessFromSlider(10))
	assert.Equal(t, float32(10), BrightnessFromSlider(100))

	assert.Equal(t, 25, ContrastToSlider(0.25))
	assert.Equal(t, -100, ContrastToSlider(-4))
	assert.Equal(t, 10, BrightnessToSlider(1))
	assert.Equal(t, 100, BrightnessToSlider(11))
}

func TestTexel(t *testing.T) {
	p := Default()
	p.Resolution = images.Resolution{Width: 4, Height: 2}
	x, y := p.Texel()
	assert.Equal(t, float32(0.25), x)
	assert.Equal(t, float32(0.5), y)
}

func TestSetMode(t *testing.T) {
	p := Default()

	require.NoError(t, SetMode(&p, "blend"))
	assert.True(t, p.BlendEnabled)
	assert.False(t, p.BackgroundOnly)
	assert.Equal(t, ModeNameBlend, ModeName(p.BlendEnabled, p.BackgroundOnly))

	require.NoError(t, SetMode(&p, "Background"))
	assert.False(t, p.BlendEnabled)
	assert.True(t, p.BackgroundOnly)

	require.NoError(t, SetMode(&p, ""))
	assert.Equal(t, ModeNamePassthrough, ModeName(p.BlendEnabled, p.BackgroundOnly))

	assert.Error(t, SetMode(&p, "overlay"))
	assert.Equal(t, ModeNameBlend, ModeName(true, true))
}

func TestPresetApplyYAML(t *testing.T) {
	ps, err := ParsePreset([]byte(`
mode: background
filter: sharpen
contrast: 4
size: 720p
`), false)
	require.NoError(t, err)

	p, err := ps.Apply(Default())
	require.NoError(t, err)
	assert.True(t, p.BackgroundOnly)
	assert.Equal(t, kernels.KindSharpen, p.Filter)
	assert.Equal(t, MaxContrast, p.Contrast)
	assert.Equal(t, float32(1), p.Brightness)
	assert.Equal(t, images.Resolution{Width: 1280, Height: 720}, p.Resolution)
}

func TestPresetApplyJSON(t *testing.T) {
	ps, err := ParsePreset([]byte(`{"mode":"blend","sepia":true,"brightness":0.5,"width":32,"height":16}`), true)
	require.NoError(t, err)

	p, err := ps.Apply(Default())
	require.NoError(t, err)
	assert.True(t, p.BlendEnabled)
	assert.True(t, p.Sepia)
	assert.Equal(t, float32(0.5), p.Brightness)
	assert.Equal(t, images.Resolution{Width: 32, Height: 16}, p.Resolution)
}

func TestPresetErrors(t *testing.T) {
	_, err := ParsePreset([]byte("colour: red\n"), false)
	assert.Error(t, err)

	_, err = ParsePreset([]byte(`{"colour":"red"}`), true)
	assert.Error(t, err)

	ps, err := ParsePreset(nil, false)
	require.NoError(t, err)
	assert.Equal(t, Preset{}, ps)

	_, err = Preset{Mode: "overlay"}.Apply(Default())
	assert.Error(t, err)

	_, err = Preset{Size: "huge"}.Apply(Default())
	assert.Error(t, err)

	p, err := Preset{Filter: "emboss"}.Apply(Default())
	require.NoError(t, err)
	assert.Equal(t, kernels.KindNone, p.Filter)
}

func TestSaveAndLoadPreset(t *testing.T) {
	want := Default()
	want.BackgroundOnly = true
	want.Filter = kernels.KindGradient
	want.GrayScale = true
	want.Contrast = -0.5
	want.Brightness = 2
	want.Resolution = images.Resolution{Width: 64, Height: 48}

	for _, name := range []string{"preset.yaml", "preset.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SavePreset(want, path))

			ps, err := LoadPreset(path)
			require.NoError(t, err)

			got, err := ps.Apply(Default())
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadPresetMissing(t *testing.T) {
	_, err := LoadPreset(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
