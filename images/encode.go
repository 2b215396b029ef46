package images

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// EncodeOptions tunes the lossy encoders. Zero values pick the defaults.
type EncodeOptions struct {
	// Quality is the JPEG/WebP quality in [1, 100]. Defaults to 95.
	Quality int
	// Lossless selects lossless WebP.
	Lossless bool
}

func (o EncodeOptions) quality() int {
	if o.Quality < 1 || o.Quality > 100 {
		return 95
	}
	return o.Quality
}

// Encode writes img to w in the requested format.
//
// Arguments:
// - w: Destination stream.
// - img: The image to encode.
// - format: Target format. Unknown formats fall back to PNG.
// - opts: Encoder tuning.
//
// Returns:
// - error if the encoder fails.
func Encode(w io.Writer, img image.Image, format ImageFormat, opts EncodeOptions) error {
	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: opts.quality()})
	case FormatWebP:
		err = webp.Encode(w, img, &webp.Options{Lossless: opts.Lossless, Quality: float32(opts.quality())})
	case FormatGIF:
		err = gif.Encode(w, img, nil)
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = png.Encode(w, img)
	}
	return errors.Wrapf(err, "encode %s", format)
}

// SaveFile encodes img to path, inferring the format from the extension.
// Unknown extensions are written as PNG.
func SaveFile(img image.Image, path string, opts EncodeOptions) error {
	format, _ := FormatFromPath(path)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}

	if err := Encode(f, img, format, opts); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "failed to close file")
}
