package kernels

import (
	"runtime"

	"github.com/nvr-ai/go-composite/images"
)

// Options configures whole-image filtering.
type Options struct {
	// Edge selects how neighbors outside the image are sampled. The zero value
	// is clamp-to-edge.
	Edge EdgeMode
	// Workers bounds the number of goroutines. Zero means runtime.NumCPU().
	Workers int
}

// workers resolves the effective worker count.
func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

// ImageSampler returns a Sampler centered on pixel (x, y) of img.
//
// Sampler offsets are in texture space, so a positive dy reads the row above
// (y - dy). Out-of-range neighbors are resolved with edge.
func ImageSampler(img *images.Image, x, y int, edge EdgeMode) Sampler {
	w, h := img.Width(), img.Height()
	return func(dx, dy int) images.Pixel {
		return img.At(MapCoord(x+dx, w, edge), MapCoord(y-dy, h, edge))
	}
}

// Apply runs the filter selected by kind over every pixel of img and returns
// a new image of the same size. KindNone returns an unmodified copy.
//
// Arguments:
// - kind: The filter to apply.
// - img: The source image. It is never modified.
// - opts: Edge policy and parallelism.
//
// Returns:
// - The filtered image, or nil when img is nil.
//
// @example
// edges := kernels.Apply(kernels.KindLaplacian, bg, kernels.Options{})
func Apply(kind Kind, img *images.Image, opts Options) *images.Image {
	if img == nil {
		return nil
	}
	if kind == KindNone || !kind.Valid() {
		return images.NewImage(img.Width(), img.Height(), img.Pixels())
	}

	w, h := img.Width(), img.Height()
	out := make([]images.Pixel, w*h)

	images.ParallelN(opts.workers(), h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				out[y*w+x] = Filter(kind, ImageSampler(img, x, y, opts.Edge))
			}
		}
	})

	return images.NewImage(w, h, out)
}
