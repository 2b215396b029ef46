package images

import (
	"path/filepath"
	"strings"
)

// ImageFormat represents supported image formats
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatWebP ImageFormat = "webp"
	FormatPNG  ImageFormat = "png"
	FormatGIF  ImageFormat = "gif"
	FormatBMP  ImageFormat = "bmp"
	FormatTIFF ImageFormat = "tiff"
)

// extensions maps lower-case file extensions to formats.
var extensions = map[string]ImageFormat{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".webp": FormatWebP,
	".png":  FormatPNG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
}

// FormatFromPath infers the format from a file extension.
//
// Returns:
// - The format and true, or FormatPNG and false when the extension is unknown.
func FormatFromPath(path string) (ImageFormat, bool) {
	f, ok := extensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return FormatPNG, false
	}
	return f, true
}

// ParseFormat accepts a format name ("png", "jpg", "webp", ...) in any case.
func ParseFormat(s string) (ImageFormat, bool) {
	s = strings.ToLower(strings.TrimPrefix(s, "."))
	f, ok := extensions["."+s]
	return f, ok
}
