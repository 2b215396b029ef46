package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "github.com/chai2010/webp" // Register WebP decoder
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
)

// ImageLoadError reports an input image that could not be read or decoded.
// A caller receiving it must keep whatever image it was displaying before.
type ImageLoadError struct {
	// Path is the file path or a caller-supplied label for the source.
	Path string
	// Err is the underlying read or decode failure.
	Err error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("load image %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying failure.
func (e *ImageLoadError) Unwrap() error { return e.Err }

// Decode reads an encoded image from r and converts it to an Image.
//
// Arguments:
// - r: The encoded image stream (PNG, JPEG, GIF, BMP, TIFF or WebP).
// - name: A label used in the returned error, usually the file path.
//
// Returns:
// - The decoded image and its format.
// - *ImageLoadError if the stream is unreadable, malformed or empty.
func Decode(r io.Reader, name string) (*Image, ImageFormat, error) {
	decoded, format, err := image.Decode(r)
	if err != nil {
		return nil, "", &ImageLoadError{Path: name, Err: errors.Wrap(err, "image decoding failed")}
	}

	img := FromImage(decoded)
	if img == nil {
		return nil, "", &ImageLoadError{Path: name, Err: errors.New("image has no pixels")}
	}

	return img, ImageFormat(format), nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte, name string) (*Image, ImageFormat, error) {
	if len(data) == 0 {
		return nil, "", &ImageLoadError{Path: name, Err: errors.New("image data is empty")}
	}
	return Decode(bytes.NewReader(data), name)
}

// LoadFile opens and decodes the image at path.
//
// @example
// bg, _, err := images.LoadFile("background.png")
func LoadFile(path string) (*Image, ImageFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &ImageLoadError{Path: path, Err: errors.Wrap(err, "failed to open image")}
	}
	defer f.Close()

	return Decode(f, path)
}
