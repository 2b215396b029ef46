package params

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
)

// Render mode names accepted in presets and flags.
const (
	ModeNamePassthrough = "passthrough"
	ModeNameBlend       = "blend"
	ModeNameBackground  = "background"
)

// Preset is the on-disk form of a parameter set. Unset fields keep whatever
// value the preset is applied on top of.
//
// @example
//
//	mode: background
//	filter: sharpen
//	contrast: 0.25
//	size: 720p
type Preset struct {
	Mode        string   `json:"mode,omitempty"         yaml:"mode,omitempty"`
	Filter      string   `json:"filter,omitempty"       yaml:"filter,omitempty"`
	GrayScale   *bool    `json:"grayscale,omitempty"    yaml:"grayscale,omitempty"`
	Sepia       *bool    `json:"sepia,omitempty"        yaml:"sepia,omitempty"`
	Contrast    *float32 `json:"contrast,omitempty"     yaml:"contrast,omitempty"`
	Brightness  *float32 `json:"brightness,omitempty"   yaml:"brightness,omitempty"`
	GlobalAlpha *float32 `json:"global_alpha,omitempty" yaml:"global_alpha,omitempty"`
	Size        string   `json:"size,omitempty"         yaml:"size,omitempty"`
	Width       int      `json:"width,omitempty"        yaml:"width,omitempty"`
	Height      int      `json:"height,omitempty"       yaml:"height,omitempty"`
}

// ModeName returns the preset name of the mode selected by the two flags.
func ModeName(blend, backgroundOnly bool) string {
	switch {
	case blend:
		return ModeNameBlend
	case backgroundOnly:
		return ModeNameBackground
	default:
		return ModeNamePassthrough
	}
}

// SetMode sets both mode flags from a mode name.
func SetMode(p *FilterParameters, name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ModeNameBlend:
		p.BlendEnabled, p.BackgroundOnly = true, false
	case ModeNameBackground, "filter":
		p.BlendEnabled, p.BackgroundOnly = false, true
	case ModeNamePassthrough, "":
		p.BlendEnabled, p.BackgroundOnly = false, false
	default:
		return errors.Errorf("unknown mode %q", name)
	}
	return nil
}

// Apply overlays the preset on base and returns the clamped result.
//
// Arguments:
// - base: The parameters to start from, usually Default().
//
// Returns:
// - The merged parameters.
// - An error if the mode or size cannot be parsed. Unknown filter names fall
// back to none.
func (ps Preset) Apply(base FilterParameters) (FilterParameters, error) {
	p := base

	if ps.Mode != "" {
		if err := SetMode(&p, ps.Mode); err != nil {
			return base, err
		}
	}
	if ps.Filter != "" {
		p.Filter, _ = kernels.ParseKind(ps.Filter)
	}
	if ps.GrayScale != nil {
		p.GrayScale = *ps.GrayScale
	}
	if ps.Sepia != nil {
		p.Sepia = *ps.Sepia
	}
	if ps.Contrast != nil {
		p.Contrast = *ps.Contrast
	}
	if ps.Brightness != nil {
		p.Brightness = *ps.Brightness
	}
	if ps.GlobalAlpha != nil {
		p.GlobalAlpha = *ps.GlobalAlpha
	}

	if ps.Size != "" {
		r, err := images.ParseResolution(ps.Size)
		if err != nil {
			return base, errors.Wrap(err, "preset size")
		}
		p.Resolution = r
	}
	if ps.Width > 0 {
		p.Resolution.Width = ps.Width
	}
	if ps.Height > 0 {
		p.Resolution.Height = ps.Height
	}

	return p.Clamped(), nil
}

// PresetFrom captures p as a fully populated preset.
func PresetFrom(p FilterParameters) Preset {
	return Preset{
		Mode:        ModeName(p.BlendEnabled, p.BackgroundOnly),
		Filter:      p.Filter.String(),
		GrayScale:   &p.GrayScale,
		Sepia:       &p.Sepia,
		Contrast:    &p.Contrast,
		Brightness:  &p.Brightness,
		GlobalAlpha: &p.GlobalAlpha,
		Width:       p.Resolution.Width,
		Height:      p.Resolution.Height,
	}
}

// isJSON reports whether path should be read and written as JSON.
func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// ParsePreset decodes a preset. JSON is used when asJSON is set, YAML
// otherwise. Unknown fields are rejected and an empty YAML document is an
// empty preset.
func ParsePreset(data []byte, asJSON bool) (Preset, error) {
	var ps Preset
	if asJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ps); err != nil {
			return Preset{}, errors.Wrap(err, "decode json preset")
		}
		return ps, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ps); err != nil && err != io.EOF {
		return Preset{}, errors.Wrap(err, "decode yaml preset")
	}
	return ps, nil
}

// LoadPreset reads a preset file. Files ending in .json are decoded as JSON,
// anything else as YAML.
func LoadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, errors.Wrapf(err, "read preset %s", path)
	}
	ps, err := ParsePreset(data, isJSON(path))
	if err != nil {
		return Preset{}, errors.Wrapf(err, "preset %s", path)
	}
	return ps, nil
}

// SavePreset writes p to path in the format implied by its extension.
func SavePreset(p FilterParameters, path string) error {
	ps := PresetFrom(p)

	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(ps, "", "  ")
	} else {
		data, err = yaml.Marshal(ps)
	}
	if err != nil {
		return errors.Wrap(err, "encode preset")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write preset %s", path)
	}
	return nil
}
