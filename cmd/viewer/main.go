// Command viewer is the interactive front end: it shows the rendered frame in
// a window and maps keys to the control panel actions.
//
// Keys:
//
//	G grayscale        S sepia
//	0 no filter        1 smooth  2 sharpen  3 laplacian  4 gradient
//	B background only  A alpha blend
//	Up/Down contrast   Left/Right brightness
//	R reset            P save screenshot    W write preset
//	H toggle the status line
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/nvr-ai/go-composite/controller"
	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
	"github.com/nvr-ai/go-composite/logging"
	"github.com/nvr-ai/go-composite/params"
	"github.com/nvr-ai/go-composite/profiler"
	"github.com/nvr-ai/go-composite/surface"
)

const (
	contrastStep   = 10
	brightnessStep = 1
)

// viewer implements ebiten.Game.
type viewer struct {
	ctrl       *controller.Controller
	screenshot string
	presetOut  string

	// pending is the newest frame not yet uploaded to canvas.
	pending atomic.Pointer[surface.OutputFrame]
	canvas  *ebiten.Image
	hud     bool
}

// action is a key binding.
type action struct {
	key ebiten.Key
	run func(v *viewer) error
}

func render(fn func(*controller.Controller) (*surface.OutputFrame, error)) func(v *viewer) error {
	return func(v *viewer) error {
		_, err := fn(v.ctrl)
		return err
	}
}

func filter(kind kernels.Kind) func(v *viewer) error {
	return render(func(c *controller.Controller) (*surface.OutputFrame, error) { return c.Filter(kind) })
}

func sliders(dc, db int) func(v *viewer) error {
	return render(func(c *controller.Controller) (*surface.OutputFrame, error) {
		p := c.Params()
		return c.Sliders(params.ContrastToSlider(p.Contrast)+dc, params.BrightnessToSlider(p.Brightness)+db)
	})
}

var bindings = []action{
	{ebiten.KeyG, render((*controller.Controller).Grayscale)},
	{ebiten.KeyS, render((*controller.Controller).Sepia)},
	{ebiten.Key0, filter(kernels.KindNone)},
	{ebiten.Key1, filter(kernels.KindSmooth)},
	{ebiten.Key2, filter(kernels.KindSharpen)},
	{ebiten.Key3, filter(kernels.KindLaplacian)},
	{ebiten.Key4, filter(kernels.KindGradient)},
	{ebiten.KeyB, render((*controller.Controller).Background)},
	{ebiten.KeyA, render((*controller.Controller).Blend)},
	{ebiten.KeyArrowUp, sliders(contrastStep, 0)},
	{ebiten.KeyArrowDown, sliders(-contrastStep, 0)},
	{ebiten.KeyArrowRight, sliders(0, brightnessStep)},
	{ebiten.KeyArrowLeft, sliders(0, -brightnessStep)},
	{ebiten.KeyR, render((*controller.Controller).Reset)},
	{ebiten.KeyP, func(v *viewer) error {
		_, err := v.ctrl.Save(v.screenshot)
		return err
	}},
	{ebiten.KeyW, func(v *viewer) error {
		return params.SavePreset(v.ctrl.Params(), v.presetOut)
	}},
	{ebiten.KeyH, func(v *viewer) error {
		v.hud = !v.hud
		return nil
	}},
}

// status summarizes the active parameters on one line.
func status(p params.FilterParameters) string {
	line := fmt.Sprintf("%s  filter=%s  contrast=%d  brightness=%d",
		params.ModeName(p.BlendEnabled, p.BackgroundOnly), p.Filter,
		params.ContrastToSlider(p.Contrast), params.BrightnessToSlider(p.Brightness))
	if p.GrayScale {
		line += "  grayscale"
	}
	if p.Sepia {
		line += "  sepia"
	}
	return line
}

// Update handles key presses. Action errors are logged, never fatal.
func (v *viewer) Update() error {
	for _, b := range bindings {
		if !inpututil.IsKeyJustPressed(b.key) {
			continue
		}
		if err := b.run(v); err != nil {
			logging.Logger().Error("action failed", "key", b.key.String(), "error", err)
		}
	}
	return nil
}

// Draw uploads the newest frame, if any, and blits it.
func (v *viewer) Draw(screen *ebiten.Image) {
	if frame := v.pending.Swap(nil); frame != nil {
		if v.canvas == nil || v.canvas.Bounds().Dx() != frame.Width() || v.canvas.Bounds().Dy() != frame.Height() {
			v.canvas = ebiten.NewImage(frame.Width(), frame.Height())
		}
		v.canvas.WritePixels(frame.RGBA().Pix)
	}
	if v.canvas != nil {
		screen.DrawImage(v.canvas, nil)
	}
	if v.hud {
		ebitenutil.DebugPrint(screen, status(v.ctrl.Params()))
	}
}

// Layout keeps the logical screen at the output resolution.
func (v *viewer) Layout(int, int) (int, int) {
	res := v.ctrl.Params().Resolution
	return res.Width, res.Height
}

func main() {
	var (
		background string
		foreground string
		presetPath string
		presetOut  string
		screenshot string
		size       string
		edge       string
		workers    int
		logLevel   string
		profile    bool
	)
	flag.StringVar(&background, "background", "", "Path to the background image")
	flag.StringVar(&foreground, "foreground", "", "Path to the foreground image")
	flag.StringVar(&presetPath, "preset", "", "YAML or JSON parameter preset to start from")
	flag.StringVar(&presetOut, "preset-out", "preset.yaml", "Where the W key writes the current parameters")
	flag.StringVar(&screenshot, "screenshot", surface.DefaultExportName, "Where the P key saves the frame")
	flag.StringVar(&size, "size", images.DefaultResolution.String(), "Window size, WxH or a name such as 720p")
	flag.StringVar(&edge, "edge", "clamp", "Sampling outside the images: clamp, mirror or wrap")
	flag.IntVar(&workers, "workers", 0, "Render goroutines (0 = one per CPU)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flag.BoolVar(&profile, "profile", false, "Periodically log render timings")
	flag.Parse()

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(logLevel),
	})))

	p := params.Default()
	if presetPath != "" {
		ps, err := params.LoadPreset(presetPath)
		if err != nil {
			log.Fatal(err)
		}
		if p, err = ps.Apply(p); err != nil {
			log.Fatal(err)
		}
	} else {
		res, err := images.ParseResolution(size)
		if err != nil {
			log.Fatal(err)
		}
		p.Resolution = res
	}

	s, err := surface.New(p.Resolution, surface.Options{Workers: workers, Edge: kernels.ParseEdgeMode(edge)})
	if err != nil {
		log.Fatal(err)
	}

	v := &viewer{screenshot: screenshot, presetOut: presetOut, hud: true}
	opts := controller.Options{
		OnFrame: func(f *surface.OutputFrame) { v.pending.Store(f) },
	}
	if profile {
		rp := profiler.New(profiler.Options{ReportInterval: 5 * time.Second})
		opts.Profiler = rp
		rp.Start()
		defer rp.Stop()
	}
	v.ctrl = controller.New(s, p, opts)
	defer v.ctrl.Close()

	if opts.Profiler != nil {
		opts.Profiler.AddMetricsCollector(v.ctrl)
	}

	// Loads complete in the background; each one triggers a single render.
	for layer, path := range map[controller.Layer]string{
		controller.LayerBackground: background,
		controller.LayerForeground: foreground,
	} {
		if path == "" {
			continue
		}
		go func(layer controller.Layer, path string) {
			if err := <-v.ctrl.LoadAsync(layer, path); err != nil {
				logging.Logger().Error("load failed", "layer", layer.String(), "error", err)
			}
		}(layer, path)
	}
	if _, err := v.ctrl.Render(); err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(p.Resolution.Width, p.Resolution.Height)
	ebiten.SetWindowTitle("go-composite")
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
