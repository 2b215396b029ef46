package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-composite/benchmark"
	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
	"github.com/nvr-ai/go-composite/logging"
	"github.com/nvr-ai/go-composite/profiler"
)

func main() {
	var (
		scenarioFile  = flag.String("scenarios", "", "Path to a scenario set (.json, .yaml)")
		saveScenarios = flag.String("save-scenarios", "", "Write the selected scenarios to this file and exit")
		outputDir     = flag.String("output", "./benchmark_results", "Output directory for results")
		testImages    = flag.String("images", "", "Corpus directory or file (synthetic images when empty)")
		corpusSize    = flag.Int("synthetic", 4, "Number of synthetic corpus images")
		size          = flag.String("size", "VGA", "Resolution for the format and worker comparisons")
		quick         = flag.Bool("quick", false, "Run quick benchmark scenarios")
		comprehensive = flag.Bool("comprehensive", false, "Run comprehensive benchmark scenarios")
		resolutions   = flag.String("resolutions", "", "Compare every resolution for this filter")
		formats       = flag.Bool("formats", false, "Compare export formats")
		workers       = flag.Bool("workers", false, "Compare render parallelism")
		timeout       = flag.Duration("timeout", 30*time.Minute, "Benchmark timeout duration")
		logLevel      = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		profile       = flag.Bool("profile", false, "Print render and encode timing statistics at the end")
	)
	flag.Parse()

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(*logLevel),
	})))
	log := logging.Logger()

	res, err := images.ParseResolution(*size)
	if err != nil {
		fatal(err)
	}

	predefined := &benchmark.PredefinedScenarios{}
	var sets []*benchmark.ScenarioSet

	if *scenarioFile != "" {
		set, err := benchmark.LoadScenarioSet(*scenarioFile)
		if err != nil {
			fatal(err)
		}
		sets = append(sets, set)
	} else {
		if *quick {
			sets = append(sets, predefined.GetQuickScenarios())
		}
		if *comprehensive {
			sets = append(sets, predefined.GetComprehensiveScenarios())
		}
		if *resolutions != "" {
			kind, ok := kernels.ParseKind(*resolutions)
			if !ok {
				fatal(errors.Errorf("unknown filter %q", *resolutions))
			}
			sets = append(sets, predefined.GetResolutionComparisonScenarios(kind))
		}
		if *formats {
			sets = append(sets, predefined.GetFormatComparisonScenarios(res))
		}
		if *workers {
			sets = append(sets, predefined.GetWorkerScalingScenarios(res, runtime.NumCPU()))
		}

		// If no specific scenarios requested, use quick by default
		if len(sets) == 0 {
			sets = append(sets, predefined.GetQuickScenarios())
		}
	}

	if *saveScenarios != "" {
		merged := &benchmark.ScenarioSet{Name: "Selected scenarios"}
		for _, set := range sets {
			merged.Scenarios = append(merged.Scenarios, set.Scenarios...)
		}
		if err := benchmark.SaveScenarioSet(merged, *saveScenarios); err != nil {
			fatal(err)
		}
		log.Info("scenarios saved", "path", *saveScenarios, "count", len(merged.Scenarios))
		return
	}

	var prof *profiler.RuntimeProfiler
	if *profile {
		prof = profiler.New(profiler.Options{})
	}

	suite := benchmark.NewSuite(benchmark.NewSuiteArgs{
		OutputPath: *outputDir,
		Profiler:   prof,
	})
	for _, set := range sets {
		suite.AddScenarioSet(set)
		log.Info("scenarios added", "set", set.Name, "count", len(set.Scenarios))
	}

	if *testImages != "" {
		n, err := suite.LoadCorpus(*testImages)
		if err != nil {
			fatal(err)
		}
		log.Info("corpus loaded", "path", *testImages, "images", n)
	} else {
		suite.SetCorpus(benchmark.SyntheticCorpus(*corpusSize, res))
		log.Info("synthetic corpus", "images", *corpusSize, "size", res)
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Info("starting benchmark execution")
	start := time.Now()

	if err := suite.RunAllScenarios(ctx); err != nil {
		fatal(err)
	}

	// Print summary
	results := suite.GetResults()
	fmt.Printf("\n=== BENCHMARK RESULTS SUMMARY ===\n")
	fmt.Printf("Total scenarios: %d (%v)\n", len(results), time.Since(start).Round(time.Millisecond))
	fmt.Printf("Results saved to: %s\n", *outputDir)

	// Find best performing scenario
	var bestFPS float64
	var bestScenario string
	for _, result := range results {
		if result.FramesPerSecond > bestFPS {
			bestFPS = result.FramesPerSecond
			bestScenario = result.Scenario.Name
		}
		fmt.Printf("  %s: %.2f FPS (%.2f MB allocated)\n",
			result.Scenario.Name,
			result.FramesPerSecond,
			float64(result.MemoryStats.TotalAllocBytes)/(1024*1024))
	}

	if bestScenario != "" {
		fmt.Printf("\nBest performing scenario: %s (%.2f FPS)\n", bestScenario, bestFPS)
	}

	if prof != nil {
		prof.Report()
	}
}

func fatal(err error) {
	logging.Logger().Error("benchmark failed", "err", err)
	os.Exit(1)
}

func init() {
	flag.Usage = func() {
		name := filepath.Base(os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", name)
		fmt.Fprintf(os.Stderr, "Benchmark tool for compositing render throughput.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -quick\n", name)
		fmt.Fprintf(os.Stderr, "  %s -images ./frames -resolutions gradient -formats\n", name)
		fmt.Fprintf(os.Stderr, "  %s -comprehensive -save-scenarios ./scenarios.yaml\n", name)
		fmt.Fprintf(os.Stderr, "  %s -scenarios ./scenarios.yaml -profile\n", name)
	}
}
