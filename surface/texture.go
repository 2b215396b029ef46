package surface

import (
	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
)

// Texture is an image uploaded for sampling by normalized coordinates.
//
// Rows are flipped at upload: texel row 0 is the bottom image row, so image
// row 0 sits at v = 1. Lookups are nearest-texel.
type Texture struct {
	width  int
	height int
	texels []images.Pixel
	edge   kernels.EdgeMode
}

// NewTexture uploads img. It returns nil when img is nil.
func NewTexture(img *images.Image, edge kernels.EdgeMode) *Texture {
	if img == nil {
		return nil
	}

	w, h := img.Width(), img.Height()
	t := &Texture{width: w, height: h, texels: make([]images.Pixel, w*h), edge: edge}
	images.Parallel(h, func(start, end int) {
		for ty := start; ty < end; ty++ {
			row := h - 1 - ty
			for x := 0; x < w; x++ {
				t.texels[ty*w+x] = img.At(x, row)
			}
		}
	})
	return t
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// Sample returns the texel covering (u, v). Coordinates outside [0, 1) are
// resolved with the texture's edge mode. A nil texture samples opaque black,
// like an incomplete texture unit.
func (t *Texture) Sample(u, v float32) images.Pixel {
	if t == nil {
		return images.Black
	}
	tx := kernels.MapCoord(int(math32.Floor(u*float32(t.width))), t.width, t.edge)
	ty := kernels.MapCoord(int(math32.Floor(v*float32(t.height))), t.height, t.edge)
	return t.texels[ty*t.width+tx]
}
