// Package surface renders the shading pipeline over a full output frame.
//
// A Surface holds the background and foreground textures and the output
// resolution. Render evaluates pipeline.Shade once per output pixel, as a
// fragment shader over a full-screen quad would.
package surface

import (
	"runtime"
	"sync"
	"time"

	"github.com/nvr-ai/go-composite/compositor"
	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
	"github.com/nvr-ai/go-composite/logging"
	"github.com/nvr-ai/go-composite/params"
	"github.com/nvr-ai/go-composite/pipeline"
)

// Options configures a Surface.
type Options struct {
	// Workers bounds the goroutines used per render. Zero means
	// runtime.NumCPU(); one renders serially.
	Workers int
	// Edge is the sampling policy outside the textures. The zero value is
	// clamp-to-edge.
	Edge kernels.EdgeMode
}

// Surface is a render target with two texture units. It is safe for
// concurrent use; renders share a read lock and texture swaps take the write
// lock.
type Surface struct {
	mu sync.RWMutex

	opts       Options
	res        images.Resolution
	texelX     float32
	texelY     float32
	background *Texture
	foreground *Texture
	closed     bool
}

// New creates a surface of the given size with no textures bound.
//
// Arguments:
// - res: Output size in pixels.
// - opts: Parallelism and edge policy.
//
// Returns:
// - The surface, or a *SurfaceUnavailableError when res is not positive.
func New(res images.Resolution, opts Options) (*Surface, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	s := &Surface{opts: opts}
	if err := s.resize(res); err != nil {
		return nil, err
	}
	return s, nil
}

// Resolution returns the current output size.
func (s *Surface) Resolution() images.Resolution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.res
}

// Texel returns the normalized size of one output pixel.
func (s *Surface) Texel() (float32, float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.texelX, s.texelY
}

// Resize changes the output size and recomputes the texel vector.
func (s *Surface) Resize(res images.Resolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &SurfaceUnavailableError{Reason: "closed"}
	}
	if res == s.res {
		return nil
	}
	if err := s.resize(res); err != nil {
		return err
	}
	logging.Logger().Info("surface resized", "resolution", res.String())
	return nil
}

func (s *Surface) resize(res images.Resolution) error {
	if !res.Valid() {
		return &SurfaceUnavailableError{Reason: "invalid resolution " + res.String()}
	}
	x, y := res.Texel()
	s.res = res
	s.texelX, s.texelY = float32(x), float32(y)
	return nil
}

// SetBackground uploads img to the background unit. Nil unbinds it.
func (s *Surface) SetBackground(img *images.Image) {
	t := NewTexture(img, s.opts.Edge)
	s.mu.Lock()
	s.background = t
	s.mu.Unlock()
}

// SetForeground uploads img to the foreground unit. Nil unbinds it.
func (s *Surface) SetForeground(img *images.Image) {
	t := NewTexture(img, s.opts.Edge)
	s.mu.Lock()
	s.foreground = t
	s.mu.Unlock()
}

// Close releases the textures. Later renders fail.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.background, s.foreground = nil, nil
	return nil
}

// Render shades every pixel of the surface with the snapshot p.
//
// The surface size is authoritative; p.Resolution is not consulted, callers
// keep the two in sync through Resize. Output pixel (x, row) samples the
// textures at u = (x+0.5)/W, v = 1-(row+0.5)/H and a neighbor offset (dx, dy)
// adds (dx/W, dy/H). The result is identical for any worker count.
//
// Returns:
// - A fresh frame, or a *SurfaceUnavailableError after Close.
//
// @example
// frame, err := s.Render(params.Default())
func (s *Surface) Render(p params.FilterParameters) (*OutputFrame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, &SurfaceUnavailableError{Reason: "closed"}
	}

	start := time.Now()
	p = p.Clamped()
	w, h := s.res.Width, s.res.Height
	frame := &OutputFrame{
		width:  w,
		height: h,
		pix:    make([]images.Pixel, w*h),
		Mode:   compositor.ModeOf(p),
	}

	bgTex, fgTex := s.background, s.foreground
	tx, ty := s.texelX, s.texelY
	fw, fh := float32(w), float32(h)

	images.ParallelN(s.opts.Workers, h, func(rowStart, rowEnd int) {
		// The samplers read the current fragment position through pos so
		// they are built once per partition.
		var pos struct{ u, v float32 }
		bg := func(dx, dy int) images.Pixel {
			return bgTex.Sample(pos.u+float32(dx)*tx, pos.v+float32(dy)*ty)
		}
		fg := func(dx, dy int) images.Pixel {
			return fgTex.Sample(pos.u+float32(dx)*tx, pos.v+float32(dy)*ty)
		}

		for row := rowStart; row < rowEnd; row++ {
			pos.v = 1 - (float32(row)+0.5)/fh
			for x := 0; x < w; x++ {
				pos.u = (float32(x) + 0.5) / fw
				frame.pix[row*w+x] = pipeline.Shade(bg, fg, p)
			}
		}
	})

	frame.Duration = time.Since(start)
	logging.Logger().Debug("frame rendered",
		"mode", frame.Mode.String(),
		"resolution", s.res.String(),
		"duration", frame.Duration,
	)
	return frame, nil
}
