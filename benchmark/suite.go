package benchmark

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
	"github.com/nvr-ai/go-composite/logging"
	"github.com/nvr-ai/go-composite/params"
	"github.com/nvr-ai/go-composite/profiler"
	"github.com/nvr-ai/go-composite/surface"
	"github.com/nvr-ai/go-composite/util"
)

// Suite manages and executes benchmark scenarios
type Suite struct {
	scenarios []Scenario
	outputDir string
	corpus    []*images.Image
	profiler  *profiler.RuntimeProfiler
	mu        sync.RWMutex
	results   []PerformanceMetrics
}

// NewSuiteArgs represents the arguments for creating a new benchmark suite.
type NewSuiteArgs struct {
	OutputPath string `json:"outputPath" yaml:"outputPath"`
	// Profiler, when set, receives a "render" and an "encode" timing per frame.
	Profiler *profiler.RuntimeProfiler `json:"-" yaml:"-"`
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - args: The arguments for creating a new benchmark suite.
//
// Returns:
//   - *Suite: The benchmark suite, with an empty corpus.
func NewSuite(args NewSuiteArgs) *Suite {
	return &Suite{
		outputDir: args.OutputPath,
		profiler:  args.Profiler,
		scenarios: make([]Scenario, 0),
		results:   make([]PerformanceMetrics, 0),
	}
}

// AddScenario adds a test scenario to the benchmark suite
func (bs *Suite) AddScenario(scenario Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// AddScenarioSet adds every scenario of a set.
func (bs *Suite) AddScenarioSet(set *ScenarioSet) {
	for _, scenario := range set.Scenarios {
		bs.AddScenario(scenario)
	}
}

// Scenarios returns a copy of the queued scenarios.
func (bs *Suite) Scenarios() []Scenario {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	out := make([]Scenario, len(bs.scenarios))
	copy(out, bs.scenarios)
	return out
}

// SetCorpus replaces the input images. Frame i renders corpus[i] over
// corpus[i+1], wrapping around.
func (bs *Suite) SetCorpus(corpus []*images.Image) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.corpus = corpus
}

// LoadCorpus loads input images from a directory or a single file.
// Undecodable files in a directory are skipped with a warning.
//
// Returns:
//   - The number of images loaded.
//   - An error if nothing could be loaded.
func (bs *Suite) LoadCorpus(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrap(err, "stat corpus path")
	}

	var corpus []*images.Image
	if info.IsDir() {
		files, err := util.LoadDirectoryImageFiles(path)
		if err != nil {
			return 0, err
		}
		for _, f := range files {
			img, err := f.Decode()
			if err != nil {
				logging.Logger().Warn("skipping corpus file", "path", f.Path, "err", err)
				continue
			}
			corpus = append(corpus, img)
		}
	} else {
		img, _, err := images.LoadFile(path)
		if err != nil {
			return 0, err
		}
		corpus = append(corpus, img)
	}

	if len(corpus) == 0 {
		return 0, errors.Errorf("no valid images found in %s", path)
	}

	bs.SetCorpus(corpus)
	return len(corpus), nil
}

// SyntheticCorpus generates n distinct test images of the given size: a
// diagonal color ramp under a checkerboard, shifted per image, with a
// translucent band so the blend path has varying alpha.
func SyntheticCorpus(n int, res images.Resolution) []*images.Image {
	if n <= 0 || !res.Valid() {
		return nil
	}

	corpus := make([]*images.Image, n)
	for k := range corpus {
		pix := make([]images.Pixel, res.Pixels())
		for y := 0; y < res.Height; y++ {
			for x := 0; x < res.Width; x++ {
				fx := float32(x) / float32(res.Width)
				fy := float32(y) / float32(res.Height)
				p := images.Pixel{R: fx, G: fy, B: float32(k%4) / 3, A: 1}
				if ((x+k*3)/8+y/8)%2 == 0 {
					p = p.Scale(0.5).WithAlpha(1)
				}
				if (y+k*5)%32 < 8 {
					p.A = 0.5
				}
				pix[y*res.Width+x] = p
			}
		}
		corpus[k] = images.NewImage(res.Width, res.Height, pix)
	}
	return corpus
}

// frameRun accumulates per-frame timings within one scenario.
type frameRun struct {
	upload time.Duration
	render time.Duration
	encode time.Duration
	bytes  int64
	buf    bytes.Buffer
	last   *surface.OutputFrame
}

// RunScenario executes a single benchmark scenario
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	if scenario.Iterations <= 0 {
		return nil, errors.Errorf("scenario %s: iterations must be positive", scenario.Name)
	}

	p, err := scenario.Params()
	if err != nil {
		return nil, err
	}

	bs.mu.RLock()
	corpus := bs.corpus
	bs.mu.RUnlock()
	if len(corpus) == 0 {
		return nil, errors.New("benchmark corpus is empty")
	}

	surf, err := surface.New(p.Resolution, surface.Options{
		Workers: scenario.Workers,
		Edge:    kernels.ParseEdgeMode(scenario.Edge),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
	}
	defer surf.Close()

	metrics := &PerformanceMetrics{
		Scenario:   scenario,
		Timestamp:  time.Now(),
		Resolution: p.Resolution,
	}

	// Warmup runs
	for i := 0; i < scenario.WarmupRuns; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
		}
		var warm frameRun
		_ = bs.processFrame(surf, corpus, i, p, scenario.Format, &warm)
	}

	// Capture initial memory stats
	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	startTime := time.Now()
	failures := 0
	var run frameRun

	for i := 0; i < scenario.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
		}
		if err := bs.processFrame(surf, corpus, i, p, scenario.Format, &run); err != nil {
			logging.Logger().Debug("frame failed", "scenario", scenario.Name, "iteration", i, "err", err)
			failures++
		}
	}

	totalDuration := time.Since(startTime)

	// Capture final memory stats
	var endMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&endMem)

	completed := scenario.Iterations - failures
	metrics.TotalDuration = totalDuration
	metrics.UploadDuration = run.upload
	metrics.RenderDuration = run.render
	metrics.EncodeDuration = run.encode
	metrics.EncodedBytes = run.bytes
	if totalDuration > 0 {
		metrics.FramesPerSecond = float64(completed) / totalDuration.Seconds()
	}
	metrics.ErrorRate = float64(failures) / float64(scenario.Iterations)
	if run.last != nil {
		metrics.Checksum = images.ComputeChecksum(run.last.NRGBA())
	}

	metrics.MemoryStats = MemoryMetrics{
		AllocBytes:      endMem.Alloc,
		TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
		SysBytes:        endMem.Sys,
		NumGC:           endMem.NumGC - startMem.NumGC,
		HeapAllocBytes:  endMem.HeapAlloc,
		HeapSysBytes:    endMem.HeapSys,
	}

	workers := scenario.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	metrics.CPUStats = CPUMetrics{
		NumCPU:     runtime.NumCPU(),
		Workers:    workers,
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}

	return metrics, nil
}

// processFrame binds the i-th image pair, renders and optionally encodes.
func (bs *Suite) processFrame(
	surf *surface.Surface,
	corpus []*images.Image,
	i int,
	p params.FilterParameters,
	format images.ImageFormat,
	run *frameRun,
) error {
	uploadStart := time.Now()
	surf.SetBackground(corpus[i%len(corpus)])
	surf.SetForeground(corpus[(i+1)%len(corpus)])
	run.upload += time.Since(uploadStart)

	frame, err := surf.Render(p)
	if err != nil {
		return err
	}
	run.render += frame.Duration
	run.last = frame
	if bs.profiler != nil {
		bs.profiler.RecordDuration("render", frame.Duration)
	}

	if format == "" {
		return nil
	}

	run.buf.Reset()
	encodeStart := time.Now()
	if err := frame.Encode(&run.buf, format, images.EncodeOptions{}); err != nil {
		return err
	}
	elapsed := time.Since(encodeStart)
	run.encode += elapsed
	run.bytes += int64(run.buf.Len())
	if bs.profiler != nil {
		bs.profiler.RecordDuration("encode", elapsed)
	}

	return nil
}

// RunAllScenarios executes all configured benchmark scenarios and saves the
// results. A failing scenario is logged and skipped; cancellation stops the
// run and still saves what completed.
func (bs *Suite) RunAllScenarios(ctx context.Context) error {
	log := logging.Logger()

	for _, scenario := range bs.Scenarios() {
		if ctx.Err() != nil {
			log.Warn("benchmark cancelled", "err", ctx.Err())
			break
		}

		metrics, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			log.Error("scenario failed", "scenario", scenario.Name, "err", err)
			continue
		}

		bs.mu.Lock()
		bs.results = append(bs.results, *metrics)
		bs.mu.Unlock()

		log.Info("scenario completed",
			"scenario", scenario.Name,
			"fps", strconv.FormatFloat(metrics.FramesPerSecond, 'f', 2, 64),
			"render", metrics.RenderDuration,
		)
	}

	_, _, err := bs.SaveResults()
	return err
}

// SaveResults persists benchmark results to filesystem
//
// Returns:
//   - The JSON results path and the CSV summary path.
func (bs *Suite) SaveResults() (string, string, error) {
	results := bs.GetResults()

	// Ensure output directory exists
	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return "", "", errors.Wrap(err, "create output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", "", errors.Wrap(err, "marshal results")
	}

	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return "", "", errors.Wrap(err, "write results file")
	}

	summaryFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))
	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return "", "", errors.Wrap(err, "save summary CSV")
	}

	logging.Logger().Info("benchmark results saved", "results", resultsFile, "summary", summaryFile)

	return resultsFile, summaryFile, nil
}

var summaryHeader = []string{
	"Scenario", "Mode", "Filter", "Resolution", "Format", "Workers",
	"FPS", "Total_Duration_ms", "Render_ms", "Encode_ms", "Alloc_MB", "Encoded_Bytes", "Error_Rate",
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(summaryHeader); err != nil {
		return err
	}

	ms := func(d time.Duration) string {
		return strconv.FormatFloat(float64(d.Nanoseconds())/1e6, 'f', 2, 64)
	}
	for _, result := range results {
		s := result.Scenario
		row := []string{
			s.Name,
			s.Mode,
			s.Filter,
			result.Resolution.String(),
			string(s.Format),
			strconv.Itoa(result.CPUStats.Workers),
			strconv.FormatFloat(result.FramesPerSecond, 'f', 2, 64),
			ms(result.TotalDuration),
			ms(result.RenderDuration),
			ms(result.EncodeDuration),
			strconv.FormatFloat(float64(result.MemoryStats.AllocBytes)/(1024*1024), 'f', 2, 64),
			strconv.FormatInt(result.EncodedBytes, 10),
			strconv.FormatFloat(result.ErrorRate, 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// GetResults returns all benchmark results
func (bs *Suite) GetResults() []PerformanceMetrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	results := make([]PerformanceMetrics, len(bs.results))
	copy(results, bs.results)
	return results
}
