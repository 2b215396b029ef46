//go:build gocv

// Command webcam composites live camera frames. Each captured frame replaces
// one layer and triggers one render; the result is shown in an OpenCV window.
//
// Keys:
//
//	g grayscale        s sepia
//	0 no filter        1 smooth  2 sharpen  3 laplacian  4 gradient
//	b background only  a alpha blend
//	] [ contrast       . , brightness
//	r reset            p save screenshot    q or Esc quit
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-composite/controller"
	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
	"github.com/nvr-ai/go-composite/logging"
	"github.com/nvr-ai/go-composite/params"
	"github.com/nvr-ai/go-composite/profiler"
	"github.com/nvr-ai/go-composite/surface"
)

const keyEscape = 27

func sliders(c *controller.Controller, dc, db int) (*surface.OutputFrame, error) {
	p := c.Params()
	return c.Sliders(params.ContrastToSlider(p.Contrast)+dc, params.BrightnessToSlider(p.Brightness)+db)
}

// handleKey runs the action bound to key. It reports false when the key
// asks to quit.
func handleKey(c *controller.Controller, key int, screenshot string) (bool, error) {
	var err error
	switch key {
	case 'q', keyEscape:
		return false, nil
	case 'g':
		_, err = c.Grayscale()
	case 's':
		_, err = c.Sepia()
	case '0', '1', '2', '3', '4':
		_, err = c.Filter(kernels.Kind(key - '0'))
	case 'b':
		_, err = c.Background()
	case 'a':
		_, err = c.Blend()
	case ']':
		_, err = sliders(c, 10, 0)
	case '[':
		_, err = sliders(c, -10, 0)
	case '.':
		_, err = sliders(c, 0, 1)
	case ',':
		_, err = sliders(c, 0, -1)
	case 'r':
		_, err = c.Reset()
	case 'p':
		_, err = c.Save(screenshot)
	}
	return true, err
}

func main() {
	var (
		deviceID   int
		cameraOn   string
		still      string
		presetPath string
		screenshot string
		size       string
		workers    int
		logLevel   string
		profile    bool
	)
	flag.IntVar(&deviceID, "device", 0, "Video capture device")
	flag.StringVar(&cameraOn, "camera-layer", "background", "Layer fed by the camera: background or foreground")
	flag.StringVar(&still, "still", "", "Image for the other layer")
	flag.StringVar(&presetPath, "preset", "", "YAML or JSON parameter preset to start from")
	flag.StringVar(&screenshot, "screenshot", surface.DefaultExportName, "Where the p key saves the frame")
	flag.StringVar(&size, "size", "VGA", "Output size, WxH or a name such as 720p")
	flag.IntVar(&workers, "workers", 0, "Render goroutines (0 = one per CPU)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flag.BoolVar(&profile, "profile", false, "Periodically log render timings")
	flag.Parse()

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(logLevel),
	})))

	camLayer, stillLayer := controller.LayerBackground, controller.LayerForeground
	if cameraOn == "foreground" {
		camLayer, stillLayer = stillLayer, camLayer
	}

	p := params.Default()
	res, err := images.ParseResolution(size)
	if err != nil {
		log.Fatal(err)
	}
	p.Resolution = res
	p.BackgroundOnly = true
	if presetPath != "" {
		ps, err := params.LoadPreset(presetPath)
		if err != nil {
			log.Fatal(err)
		}
		if p, err = ps.Apply(p); err != nil {
			log.Fatal(err)
		}
	}

	s, err := surface.New(p.Resolution, surface.Options{Workers: workers})
	if err != nil {
		log.Fatal(err)
	}

	opts := controller.Options{}
	if profile {
		rp := profiler.New(profiler.Options{ReportInterval: 5 * time.Second})
		opts.Profiler = rp
		rp.Start()
		defer rp.Stop()
	}
	ctrl := controller.New(s, p, opts)
	defer ctrl.Close()
	if opts.Profiler != nil {
		opts.Profiler.AddMetricsCollector(ctrl)
	}

	if still != "" {
		if _, err := ctrl.Load(stillLayer, still); err != nil {
			log.Fatal(err)
		}
	}

	webcam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		log.Fatal(err)
	}
	defer webcam.Close()

	window := gocv.NewWindow("go-composite")
	defer window.Close()

	capture := gocv.NewMat()
	defer capture.Close()

	logging.Logger().Info("reading camera", "device", deviceID, "layer", camLayer.String())
	for {
		if ok := webcam.Read(&capture); !ok {
			logging.Logger().Error("cannot read device", "device", deviceID)
			return
		}
		if capture.Empty() {
			continue
		}

		src, err := capture.ToImage()
		if err != nil {
			logging.Logger().Warn("frame conversion failed", "error", err)
			continue
		}
		frame, err := ctrl.LoadImage(camLayer, images.FromImage(src))
		if err != nil {
			logging.Logger().Error("render failed", "error", err)
			return
		}

		out, err := gocv.ImageToMatRGB(frame.NRGBA())
		if err != nil {
			logging.Logger().Warn("display conversion failed", "error", err)
			continue
		}
		window.IMShow(out)
		out.Close()

		key := window.WaitKey(1)
		if key < 0 {
			continue
		}
		running, err := handleKey(ctrl, key, screenshot)
		if err != nil {
			logging.Logger().Error("action failed", "key", string(rune(key)), "error", err)
		}
		if !running {
			return
		}
	}
}
