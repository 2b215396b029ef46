package surface

import (
	"image"
	"image/draw"
	"io"
	"time"

	"github.com/nvr-ai/go-composite/compositor"
	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/logging"
)

// DefaultExportName is the file name used when saving without an explicit path.
const DefaultExportName = "screenshot.png"

// OutputFrame is the result of one render. Each render allocates a fresh frame
// and frames are never written after Render returns.
type OutputFrame struct {
	width  int
	height int
	pix    []images.Pixel

	// Mode is the rendering path that produced the frame.
	Mode compositor.Mode
	// Duration is the wall time spent shading.
	Duration time.Duration
}

// Width returns the frame width in pixels.
func (f *OutputFrame) Width() int { return f.width }

// Height returns the frame height in pixels.
func (f *OutputFrame) Height() int { return f.height }

// At returns the unclamped color at (x, y), row 0 at the top.
func (f *OutputFrame) At(x, y int) images.Pixel {
	return f.pix[y*f.width+x]
}

// Pixels returns a copy of the row-major color buffer.
func (f *OutputFrame) Pixels() []images.Pixel {
	cp := make([]images.Pixel, len(f.pix))
	copy(cp, f.pix)
	return cp
}

// Image returns the frame as an Image.
func (f *OutputFrame) Image() *images.Image {
	return images.NewImage(f.width, f.height, f.pix)
}

// NRGBA quantizes the frame to 8 bits, saturating out-of-range channels.
func (f *OutputFrame) NRGBA() *image.NRGBA {
	return images.PixelsToNRGBA(f.width, f.height, f.pix)
}

// RGBA returns the quantized frame with premultiplied alpha, the layout
// expected by display surfaces.
func (f *OutputFrame) RGBA() *image.RGBA {
	src := f.NRGBA()
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Src)
	return dst
}

// Encode writes the frame in the given format.
func (f *OutputFrame) Encode(w io.Writer, format images.ImageFormat, opts images.EncodeOptions) error {
	return images.Encode(w, f.NRGBA(), format, opts)
}

// Save writes the frame to path, inferring the format from the extension.
// An empty path saves to DefaultExportName.
//
// @example
// err := frame.Save("", images.EncodeOptions{}) // writes screenshot.png
func (f *OutputFrame) Save(path string, opts images.EncodeOptions) error {
	if path == "" {
		path = DefaultExportName
	}
	if err := images.SaveFile(f.NRGBA(), path, opts); err != nil {
		return err
	}
	logging.Logger().Info("frame exported", "path", path, "width", f.width, "height", f.height)
	return nil
}
