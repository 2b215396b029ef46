// Command go-composite renders a background and an optional foreground image
// through the compositing pipeline and writes the result to an image file.
//
// Usage:
//
//	go-composite -background bg.jpg -foreground fg.png -mode blend -sepia -output out.png
//	go-composite -background bg.jpg -preset edges.yaml -size 720p
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-composite/controller"
	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
	"github.com/nvr-ai/go-composite/logging"
	"github.com/nvr-ai/go-composite/params"
	"github.com/nvr-ai/go-composite/profiler"
	"github.com/nvr-ai/go-composite/surface"
)

// Config holds everything parsed from the command line.
type Config struct {
	Background string
	Foreground string
	Output     string
	Preset     string

	Mode       string
	Filter     string
	GrayScale  bool
	Sepia      bool
	Contrast   int
	Brightness int
	Size       string

	Workers   int
	Edge      string
	Fit       bool
	FitFilter string
	Quality   int
	Lossless  bool
	LogLevel  string
	Profile   bool
}

func main() {
	var cfg Config
	flag.StringVar(&cfg.Background, "background", "", "Path to the background image (required)")
	flag.StringVar(&cfg.Foreground, "foreground", "", "Path to the foreground image")
	flag.StringVar(&cfg.Output, "output", surface.DefaultExportName, "Output image path; the extension selects the format")
	flag.StringVar(&cfg.Preset, "preset", "", "YAML or JSON parameter preset")
	flag.StringVar(&cfg.Mode, "mode", params.ModeNameBackground, "Render mode: passthrough, background or blend")
	flag.StringVar(&cfg.Filter, "filter", "none", "Background filter: none, smooth, sharpen, laplacian or gradient")
	flag.BoolVar(&cfg.GrayScale, "grayscale", false, "Apply the grayscale transform")
	flag.BoolVar(&cfg.Sepia, "sepia", false, "Apply the sepia transform")
	flag.IntVar(&cfg.Contrast, "contrast", 0, "Contrast slider position in [-100, 100]")
	flag.IntVar(&cfg.Brightness, "brightness", 10, "Brightness slider position in [0, 100]; 10 is neutral")
	flag.StringVar(&cfg.Size, "size", images.DefaultResolution.String(), "Output size, WxH or a name such as 720p")
	flag.IntVar(&cfg.Workers, "workers", 0, "Render goroutines (0 = one per CPU)")
	flag.StringVar(&cfg.Edge, "edge", "clamp", "Sampling outside the images: clamp, mirror or wrap")
	flag.BoolVar(&cfg.Fit, "fit", false, "Resample inputs to the output size before rendering")
	flag.StringVar(&cfg.FitFilter, "fit-filter", "bilinear", "Resampling filter for -fit: nearest, bilinear, bicubic, lanczos or mitchell")
	flag.IntVar(&cfg.Quality, "quality", 0, "JPEG/WebP quality (0 = default)")
	flag.BoolVar(&cfg.Lossless, "lossless", false, "Lossless WebP output")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flag.BoolVar(&cfg.Profile, "profile", false, "Log render timings and memory statistics")
	flag.Parse()

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})))

	if cfg.Background == "" {
		flag.Usage()
		log.Fatal("-background is required")
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	p, err := buildParams(cfg, set)
	if err != nil {
		log.Fatal(err)
	}

	if err := run(cfg, p); err != nil {
		log.Fatal(err)
	}
}

// buildParams merges the preset (if any) with the flags. Flags named in set
// were given explicitly and override the preset; the others only apply when
// there is no preset.
func buildParams(cfg Config, set map[string]bool) (params.FilterParameters, error) {
	p := params.Default()
	usePreset := cfg.Preset != ""
	override := func(name string) bool { return !usePreset || set[name] }

	if usePreset {
		ps, err := params.LoadPreset(cfg.Preset)
		if err != nil {
			return p, err
		}
		if p, err = ps.Apply(p); err != nil {
			return p, err
		}
	}

	if override("mode") {
		if err := params.SetMode(&p, cfg.Mode); err != nil {
			return p, err
		}
	}
	if override("filter") {
		kind, ok := kernels.ParseKind(cfg.Filter)
		if !ok {
			return p, errors.Errorf("unknown filter %q", cfg.Filter)
		}
		p.Filter = kind
	}
	if override("grayscale") {
		p.GrayScale = cfg.GrayScale
	}
	if override("sepia") {
		p.Sepia = cfg.Sepia
	}
	if override("contrast") {
		p.Contrast = params.ContrastFromSlider(cfg.Contrast)
	}
	if override("brightness") {
		p.Brightness = params.BrightnessFromSlider(cfg.Brightness)
	}
	if override("size") {
		res, err := images.ParseResolution(cfg.Size)
		if err != nil {
			return p, err
		}
		p.Resolution = res
	}
	return p.Clamped(), nil
}

// run loads the inputs, renders one frame and saves it.
func run(cfg Config, p params.FilterParameters) error {
	s, err := surface.New(p.Resolution, surface.Options{
		Workers: cfg.Workers,
		Edge:    kernels.ParseEdgeMode(cfg.Edge),
	})
	if err != nil {
		return err
	}

	opts := controller.Options{
		Fit:       cfg.Fit,
		FitFilter: images.ParseResampleFilter(cfg.FitFilter),
		Export:    images.EncodeOptions{Quality: cfg.Quality, Lossless: cfg.Lossless},
	}
	if cfg.Profile {
		rp := profiler.New(profiler.Options{})
		opts.Profiler = rp
		defer rp.Report()
	}

	c := controller.New(s, p, opts)
	defer c.Close()

	start := time.Now()
	if _, err := c.Load(controller.LayerBackground, cfg.Background); err != nil {
		return err
	}
	if cfg.Foreground != "" {
		if _, err := c.Load(controller.LayerForeground, cfg.Foreground); err != nil {
			return err
		}
	}

	path, err := c.Save(cfg.Output)
	if err != nil {
		return err
	}

	frame := c.Frame()
	logging.Logger().Info("done",
		"output", path,
		"params", c.Params(),
		"checksum", images.ComputeChecksum(frame.NRGBA()),
		"elapsed", time.Since(start).Truncate(time.Millisecond),
	)
	return nil
}
