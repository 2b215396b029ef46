// Package controller is the control layer in front of a render surface.
//
// It owns the process-wide parameter state, applies the UI actions with their
// side effects and turns every change or completed image load into exactly one
// render.
package controller

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
	"github.com/nvr-ai/go-composite/logging"
	"github.com/nvr-ai/go-composite/params"
	"github.com/nvr-ai/go-composite/profiler"
	"github.com/nvr-ai/go-composite/surface"
)

// Renderer is the surface the controller draws into. *surface.Surface
// implements it.
type Renderer interface {
	Render(p params.FilterParameters) (*surface.OutputFrame, error)
	SetBackground(img *images.Image)
	SetForeground(img *images.Image)
	Resize(res images.Resolution) error
	Close() error
}

// Layer names one of the two texture inputs.
type Layer int

const (
	// LayerBackground is texture unit 0.
	LayerBackground Layer = iota
	// LayerForeground is texture unit 1.
	LayerForeground
)

// String returns "background" or "foreground".
func (l Layer) String() string {
	if l == LayerForeground {
		return "foreground"
	}
	return "background"
}

// Options configures a Controller.
type Options struct {
	// Profiler, when set, receives a "render" timing for every frame.
	Profiler *profiler.RuntimeProfiler
	// OnFrame is called with every rendered frame, after it is stored.
	OnFrame func(*surface.OutputFrame)
	// Fit resamples loaded images to the output resolution before upload.
	Fit bool
	// FitFilter is the resampling filter used when Fit is set.
	FitFilter images.ResampleFilter
	// Export configures Save.
	Export images.EncodeOptions
}

// Controller serializes texture swaps and renders against one Renderer while
// letting parameter updates race freely: every update swaps in a complete
// snapshot, and each render reads exactly one snapshot.
type Controller struct {
	renderer Renderer
	opts     Options

	params  atomic.Pointer[params.FilterParameters]
	last    atomic.Pointer[surface.OutputFrame]
	renders atomic.Int64

	// mu serializes texture swaps, resizes and renders.
	mu sync.Mutex
}

// New creates a controller that renders into r, starting from initial.
//
// Arguments:
// - r: The render target.
// - initial: The first parameter snapshot. It is clamped.
// - opts: Optional hooks and load behavior.
//
// Returns:
// - The controller. Nothing is rendered until the first action or load.
func New(r Renderer, initial params.FilterParameters, opts Options) *Controller {
	c := &Controller{renderer: r, opts: opts}
	p := initial.Clamped()
	c.params.Store(&p)
	return c
}

// Params returns the current snapshot.
func (c *Controller) Params() params.FilterParameters {
	return *c.params.Load()
}

// Set replaces the whole snapshot.
func (c *Controller) Set(p params.FilterParameters) {
	p = p.Clamped()
	c.params.Store(&p)
}

// Update applies fn to a copy of the current snapshot and swaps the clamped
// result in. Concurrent updates are retried, so none is lost.
func (c *Controller) Update(fn func(p *params.FilterParameters)) params.FilterParameters {
	for {
		old := c.params.Load()
		next := *old
		fn(&next)
		next = next.Clamped()
		if c.params.CompareAndSwap(old, &next) {
			return next
		}
	}
}

// Frame returns the most recent frame, or nil before the first render.
func (c *Controller) Frame() *surface.OutputFrame {
	return c.last.Load()
}

// Renders returns the number of frames rendered so far.
func (c *Controller) Renders() int64 {
	return c.renders.Load()
}

// CollectMetrics implements profiler.MetricsCollector.
func (c *Controller) CollectMetrics() map[string]float64 {
	return map[string]float64{"renders": float64(c.renders.Load())}
}

// Render draws one frame with the current snapshot.
func (c *Controller) Render() (*surface.OutputFrame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

func (c *Controller) renderLocked() (*surface.OutputFrame, error) {
	p := c.Params()

	if err := c.renderer.Resize(p.Resolution); err != nil {
		return nil, errors.Wrap(err, "resize surface")
	}

	var done func()
	if c.opts.Profiler != nil {
		done = c.opts.Profiler.StartOperation("render")
	}
	frame, err := c.renderer.Render(p)
	if done != nil {
		done()
	}
	if err != nil {
		return nil, errors.Wrap(err, "render")
	}

	c.renders.Add(1)
	c.last.Store(frame)
	if c.opts.OnFrame != nil {
		c.opts.OnFrame(frame)
	}
	return frame, nil
}

// apply updates the snapshot and renders it.
func (c *Controller) apply(fn func(p *params.FilterParameters)) (*surface.OutputFrame, error) {
	c.Update(fn)
	return c.Render()
}

// Grayscale enables grayscale and clears sepia.
func (c *Controller) Grayscale() (*surface.OutputFrame, error) {
	return c.apply(func(p *params.FilterParameters) {
		p.GrayScale, p.Sepia = true, false
	})
}

// Sepia enables sepia and clears grayscale.
func (c *Controller) Sepia() (*surface.OutputFrame, error) {
	return c.apply(func(p *params.FilterParameters) {
		p.Sepia, p.GrayScale = true, false
	})
}

// Filter selects one background filter. Grayscale and sepia are cleared and
// the previous filter is replaced.
func (c *Controller) Filter(kind kernels.Kind) (*surface.OutputFrame, error) {
	return c.apply(func(p *params.FilterParameters) {
		p.GrayScale, p.Sepia = false, false
		p.Filter = kind
	})
}

// Background switches to background-only rendering and disables blending.
func (c *Controller) Background() (*surface.OutputFrame, error) {
	return c.apply(func(p *params.FilterParameters) {
		p.BackgroundOnly, p.BlendEnabled = true, false
	})
}

// Blend switches to alpha blending and disables background-only rendering.
func (c *Controller) Blend() (*surface.OutputFrame, error) {
	return c.apply(func(p *params.FilterParameters) {
		p.BlendEnabled, p.BackgroundOnly = true, false
	})
}

// Sliders sets contrast and brightness from slider positions, [-100, 100]
// and [0, 100] respectively.
func (c *Controller) Sliders(contrast, brightness int) (*surface.OutputFrame, error) {
	return c.apply(func(p *params.FilterParameters) {
		p.Contrast = params.ContrastFromSlider(contrast)
		p.Brightness = params.BrightnessFromSlider(brightness)
	})
}

// Reset restores the default parameters, keeping the output resolution.
func (c *Controller) Reset() (*surface.OutputFrame, error) {
	return c.apply(func(p *params.FilterParameters) {
		res := p.Resolution
		*p = params.Default()
		p.Resolution = res
	})
}

// Resize changes the output resolution.
func (c *Controller) Resize(res images.Resolution) (*surface.OutputFrame, error) {
	return c.apply(func(p *params.FilterParameters) {
		p.Resolution = res
	})
}

// LoadImage uploads img to layer and renders once. A nil image unbinds the
// layer.
func (c *Controller) LoadImage(layer Layer, img *images.Image) (*surface.OutputFrame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if img != nil && c.opts.Fit {
		res := c.Params().Resolution
		img = images.Fit(img, res.Width, res.Height, c.opts.FitFilter)
	}

	switch layer {
	case LayerForeground:
		c.renderer.SetForeground(img)
	default:
		c.renderer.SetBackground(img)
	}
	return c.renderLocked()
}

// Load decodes the file at path into layer and renders once.
//
// A file that cannot be read or decoded returns an *images.ImageLoadError;
// the layer keeps its previous image and nothing is rendered.
func (c *Controller) Load(layer Layer, path string) (*surface.OutputFrame, error) {
	img, format, err := images.LoadFile(path)
	if err != nil {
		logging.Logger().Warn("image load failed, keeping previous image",
			"layer", layer.String(), "path", path, "error", err)
		return nil, err
	}
	logging.Logger().Info("image loaded",
		"layer", layer.String(), "path", path, "format", string(format),
		"width", img.Width(), "height", img.Height())
	return c.LoadImage(layer, img)
}

// LoadAsync runs Load on a new goroutine. The channel receives the result
// once and is then closed.
func (c *Controller) LoadAsync(layer Layer, path string) <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		_, err := c.Load(layer, path)
		ch <- err
	}()
	return ch
}

// Save renders the current snapshot and writes it to path. An empty path
// writes surface.DefaultExportName.
//
// Returns:
// - The path written.
func (c *Controller) Save(path string) (string, error) {
	frame, err := c.Render()
	if err != nil {
		return "", err
	}
	if path == "" {
		path = surface.DefaultExportName
	}
	if err := frame.Save(path, c.opts.Export); err != nil {
		return "", errors.Wrapf(err, "save %s", path)
	}
	return path, nil
}

// Close releases the renderer.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderer.Close()
}
