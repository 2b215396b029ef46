package images

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ResolutionType is the short name of a named output resolution.
type ResolutionType string

// Named output resolutions accepted by the -size flag.
const (
	ResolutionTypeNHD      ResolutionType = "nHD"
	ResolutionTypeVGA      ResolutionType = "VGA"
	ResolutionTypeQHD540   ResolutionType = "540p"
	ResolutionTypeHD720p   ResolutionType = "720p"
	ResolutionTypeFHD1080p ResolutionType = "1080p"
	ResolutionTypeQHD1440p ResolutionType = "1440p"
	ResolutionType4KUHD    ResolutionType = "4k"
)

// Resolution is the pixel size of an output surface.
type Resolution struct {
	Width  int `json:"width"  yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// DefaultResolution is used when no output size is configured.
var DefaultResolution = Resolution{Width: 600, Height: 600}

// resolutions is the lookup table for named sizes.
var resolutions = map[ResolutionType]Resolution{
	ResolutionTypeNHD:      {Width: 640, Height: 360},
	ResolutionTypeVGA:      {Width: 640, Height: 480},
	ResolutionTypeQHD540:   {Width: 960, Height: 540},
	ResolutionTypeHD720p:   {Width: 1280, Height: 720},
	ResolutionTypeFHD1080p: {Width: 1920, Height: 1080},
	ResolutionTypeQHD1440p: {Width: 2560, Height: 1440},
	ResolutionType4KUHD:    {Width: 3840, Height: 2160},
}

// Valid reports whether both dimensions are positive.
func (r Resolution) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Texel returns the size of one output pixel in normalized coordinates,
// (1/width, 1/height). Integer neighbor offsets are multiplied by it to get
// sampling offsets.
func (r Resolution) Texel() (float64, float64) {
	if !r.Valid() {
		return 0, 0
	}
	return 1 / float64(r.Width), 1 / float64(r.Height)
}

// Pixels returns width * height.
func (r Resolution) Pixels() int {
	if !r.Valid() {
		return 0
	}
	return r.Width * r.Height
}

// String returns "WxH".
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// GetResolutionByType retrieves a named resolution.
func GetResolutionByType(t ResolutionType) (Resolution, bool) {
	r, ok := resolutions[t]
	return r, ok
}

// ResolutionNames lists the named resolutions in ascending pixel count.
func ResolutionNames() []ResolutionType {
	names := make([]ResolutionType, 0, len(resolutions))
	for name := range resolutions {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return resolutions[names[i]].Pixels() < resolutions[names[j]].Pixels()
	})
	return names
}

// ParseResolution accepts either a named resolution ("720p") or "WxH".
//
// @example
// r, err := ParseResolution("800x600")
func ParseResolution(s string) (Resolution, error) {
	s = strings.TrimSpace(s)
	for name, r := range resolutions {
		if strings.EqualFold(string(name), s) {
			return r, nil
		}
	}

	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return Resolution{}, errors.Errorf("unknown resolution %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Resolution{}, errors.Wrapf(err, "invalid width in %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Resolution{}, errors.Wrapf(err, "invalid height in %q", s)
	}

	r := Resolution{Width: width, Height: height}
	if !r.Valid() {
		return Resolution{}, errors.Errorf("resolution %q must be positive", s)
	}
	return r, nil
}
