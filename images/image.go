// Package images provides the pixel buffer types shared by the compositing
// pipeline, along with the boundary helpers that move pixels in and out of
// encoded files.
package images

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/chewxy/math32"
)

// Pixel is a non-premultiplied RGBA color with float32 channels.
//
// Channels are nominally in [0, 1] but intermediate pipeline results may leave
// that range (sharpen overshoot, brightness > 1). Values are only saturated
// when quantized for presentation or export.
type Pixel struct {
	R, G, B, A float32
}

// Black is opaque black, the color sampled from an unbound texture unit.
var Black = Pixel{A: 1}

// Add returns the channel-wise sum p + o.
func (p Pixel) Add(o Pixel) Pixel {
	return Pixel{p.R + o.R, p.G + o.G, p.B + o.B, p.A + o.A}
}

// Sub returns the channel-wise difference p - o.
func (p Pixel) Sub(o Pixel) Pixel {
	return Pixel{p.R - o.R, p.G - o.G, p.B - o.B, p.A - o.A}
}

// Mul returns the channel-wise product p * o.
func (p Pixel) Mul(o Pixel) Pixel {
	return Pixel{p.R * o.R, p.G * o.G, p.B * o.B, p.A * o.A}
}

// Scale multiplies every channel by s.
func (p Pixel) Scale(s float32) Pixel {
	return Pixel{p.R * s, p.G * s, p.B * s, p.A * s}
}

// WithAlpha returns p with its alpha channel replaced.
func (p Pixel) WithAlpha(a float32) Pixel {
	p.A = a
	return p
}

// NRGBA quantizes p to 8 bits per channel, saturating out-of-range values.
func (p Pixel) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: quantize(p.R),
		G: quantize(p.G),
		B: quantize(p.B),
		A: quantize(p.A),
	}
}

// PixelFromNRGBA converts an 8-bit color into a Pixel.
func PixelFromNRGBA(c color.NRGBA) Pixel {
	return Pixel{
		R: float32(c.R) / 255,
		G: float32(c.G) / 255,
		B: float32(c.B) / 255,
		A: float32(c.A) / 255,
	}
}

// quantize saturates v to [0, 1] and rounds it to the nearest 8-bit level.
func quantize(v float32) uint8 {
	return uint8(math32.Floor(Clamp(v, 0, 1)*255 + 0.5))
}

// Image is an immutable width x height buffer of non-premultiplied pixels.
// Row 0 is the top row of the picture.
type Image struct {
	width  int
	height int
	pix    []Pixel
}

// NewImage builds an Image from a row-major pixel slice. The slice is copied.
//
// Arguments:
// - width: The width of the image in pixels.
// - height: The height of the image in pixels.
// - pix: width*height pixels, top row first.
//
// Returns:
// - The image, or nil when the dimensions do not match len(pix).
func NewImage(width, height int, pix []Pixel) *Image {
	if width <= 0 || height <= 0 || len(pix) != width*height {
		return nil
	}
	cp := make([]Pixel, len(pix))
	copy(cp, pix)
	return &Image{width: width, height: height, pix: cp}
}

// Uniform builds a width x height image filled with c.
func Uniform(width, height int, c Pixel) *Image {
	if width <= 0 || height <= 0 {
		return nil
	}
	pix := make([]Pixel, width*height)
	for i := range pix {
		pix[i] = c
	}
	return &Image{width: width, height: height, pix: pix}
}

// FromImage converts any image.Image into an Image.
//
// The source is first normalized to non-premultiplied NRGBA, so the channel
// values are the straight (unassociated) colors stored in the file.
//
// @example
// bg := images.FromImage(decoded)
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	if b.Empty() {
		return nil
	}

	// Normalize the color model once so the hot loop reads raw bytes.
	nrgba, ok := src.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)
	}

	w, h := b.Dx(), b.Dy()
	out := &Image{width: w, height: h, pix: make([]Pixel, w*h)}
	Parallel(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := nrgba.Pix[y*nrgba.Stride:]
			for x := 0; x < w; x++ {
				s := row[x*4 : x*4+4 : x*4+4]
				out.pix[y*w+x] = PixelFromNRGBA(color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]})
			}
		}
	})
	return out
}

// Width returns the image width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *Image) Height() int { return img.height }

// Bounds returns the image rectangle anchored at the origin.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.width, img.height)
}

// At returns the pixel at (x, y). Coordinates must be in bounds.
func (img *Image) At(x, y int) Pixel {
	return img.pix[y*img.width+x]
}

// Pixels returns a copy of the row-major pixel slice.
func (img *Image) Pixels() []Pixel {
	cp := make([]Pixel, len(img.pix))
	copy(cp, img.pix)
	return cp
}

// NRGBA quantizes the image into an 8-bit non-premultiplied image.
func (img *Image) NRGBA() *image.NRGBA {
	return PixelsToNRGBA(img.width, img.height, img.pix)
}

// PixelsToNRGBA quantizes a row-major pixel slice into an *image.NRGBA.
func PixelsToNRGBA(width, height int, pix []Pixel) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	Parallel(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				c := pix[y*width+x].NRGBA()
				off := y*dst.Stride + x*4
				dst.Pix[off+0] = c.R
				dst.Pix[off+1] = c.G
				dst.Pix[off+2] = c.B
				dst.Pix[off+3] = c.A
			}
		}
	})
	return dst
}
