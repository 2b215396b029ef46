package kernels

import "strings"

// EdgeMode defines how sampling behaves outside the image bounds.
// - Clamp: repeats edge pixels (matches a clamp-to-edge texture sampler).
// - Mirror: reflects coordinates (better edge energy preservation).
// - Wrap: tiles the image (matches a repeating texture sampler).
type EdgeMode int

const (
	EdgeClamp EdgeMode = iota
	EdgeMirror
	EdgeWrap
)

// String returns the flag spelling of the mode.
func (m EdgeMode) String() string {
	switch m {
	case EdgeMirror:
		return "mirror"
	case EdgeWrap:
		return "wrap"
	default:
		return "clamp"
	}
}

// ParseEdgeMode maps "clamp", "mirror" or "wrap" to a mode. Anything else is clamp.
func ParseEdgeMode(s string) EdgeMode {
	switch strings.ToLower(s) {
	case "mirror":
		return EdgeMirror
	case "wrap", "repeat":
		return EdgeWrap
	default:
		return EdgeClamp
	}
}

// MapCoord maps an index i to [0, n) according to edge mode.
// For Clamp: clamp to [0, n-1].
// For Mirror: reflect indices ... -2,-1,0,1,2, ... -> 1,0,0,1,2, ... (no duplication at edges).
// For Wrap: modulo wrap to [0, n).
func MapCoord(i, n int, mode EdgeMode) int {
	if n <= 1 {
		return 0
	}
	switch mode {
	case EdgeMirror:
		for i < 0 || i >= n {
			if i < 0 {
				i = -i - 1
			} else {
				i = 2*n - i - 1
			}
		}
		return i
	case EdgeWrap:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	default:
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
}
