package benchmark

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
	"github.com/nvr-ai/go-composite/params"
	"github.com/nvr-ai/go-composite/profiler"
	"github.com/nvr-ai/go-composite/surface"
)

var smallRes = images.Resolution{Width: 16, Height: 12}

func smallScenario(name string) *ScenarioBuilder {
	return NewScenarioBuilder(name).
		WithResolution(smallRes).
		WithIterations(3).
		WithWarmupRuns(1)
}

func TestNewSuite(t *testing.T) {
	outputDir := "./test_output"

	suite := NewSuite(NewSuiteArgs{OutputPath: outputDir})

	assert.NotNil(t, suite)
	assert.Equal(t, outputDir, suite.outputDir)
	assert.Empty(t, suite.scenarios)
	assert.Empty(t, suite.results)
	assert.Empty(t, suite.corpus)
}

func TestScenarioBuilder(t *testing.T) {
	scenario := NewScenarioBuilder("test_scenario").
		WithResolution(images.Resolution{Width: 416, Height: 320}).
		WithMode(params.ModeNameBlend).
		WithFilter(kernels.KindSharpen).
		WithGrayscale(true).
		WithSepia(false).
		WithContrastBrightness(0.5, 2).
		WithExportFormat(images.FormatJPEG).
		WithEdge(kernels.EdgeMirror).
		WithWorkers(2).
		WithIterations(50).
		WithWarmupRuns(5).
		Build()

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, images.FormatJPEG, scenario.Format)
	assert.Equal(t, "mirror", scenario.Edge)
	assert.Equal(t, 2, scenario.Workers)
	assert.Equal(t, 50, scenario.Iterations)
	assert.Equal(t, 5, scenario.WarmupRuns)

	p, err := scenario.Params()
	require.NoError(t, err)
	assert.True(t, p.BlendEnabled)
	assert.False(t, p.BackgroundOnly)
	assert.Equal(t, kernels.KindSharpen, p.Filter)
	assert.True(t, p.GrayScale)
	assert.False(t, p.Sepia)
	assert.Equal(t, float32(0.5), p.Contrast)
	assert.Equal(t, float32(2), p.Brightness)
	assert.Equal(t, images.Resolution{Width: 416, Height: 320}, p.Resolution)
}

func TestScenarioDefaults(t *testing.T) {
	p, err := NewScenarioBuilder("defaults").Build().Params()
	require.NoError(t, err)

	assert.True(t, p.BackgroundOnly)
	assert.Equal(t, kernels.KindNone, p.Filter)
	assert.Equal(t, images.DefaultResolution, p.Resolution)
}

func TestScenarioBadMode(t *testing.T) {
	_, err := NewScenarioBuilder("bad").WithMode("sideways").Build().Params()
	assert.Error(t, err)
}

func TestAddScenario(t *testing.T) {
	suite := NewSuite(NewSuiteArgs{OutputPath: t.TempDir()})

	scenario := smallScenario("test").Build()
	suite.AddScenario(scenario)

	require.Len(t, suite.Scenarios(), 1)
	assert.Equal(t, scenario, suite.Scenarios()[0])

	predefined := &PredefinedScenarios{}
	suite.AddScenarioSet(predefined.GetQuickScenarios())
	assert.Len(t, suite.Scenarios(), 1+len(Filters)+1)
}

func TestPredefinedScenarios(t *testing.T) {
	predefined := &PredefinedScenarios{}

	quick := predefined.GetQuickScenarios()
	assert.Equal(t, "Quick Performance Test", quick.Name)
	assert.Len(t, quick.Scenarios, len(Filters)+1)

	comprehensive := predefined.GetComprehensiveScenarios()
	assert.Equal(t, "Comprehensive Performance Test", comprehensive.Name)
	assert.Len(t, comprehensive.Scenarios, len(images.ResolutionNames())*len(Filters)*2)

	resolution := predefined.GetResolutionComparisonScenarios(kernels.KindGradient)
	assert.Contains(t, resolution.Name, "Resolution Comparison")
	assert.Len(t, resolution.Scenarios, len(images.ResolutionNames()))

	format := predefined.GetFormatComparisonScenarios(smallRes)
	assert.Contains(t, format.Name, "Format Comparison")
	assert.Len(t, format.Scenarios, len(ExportFormats))

	workers := predefined.GetWorkerScalingScenarios(smallRes, 8)
	require.Len(t, workers.Scenarios, 4)
	assert.Equal(t, 8, workers.Scenarios[3].Workers)

	// Every predefined scenario resolves to valid parameters.
	for _, set := range []*ScenarioSet{quick, comprehensive, resolution, format, workers} {
		for _, s := range set.Scenarios {
			_, err := s.Params()
			assert.NoError(t, err, s.Name)
		}
	}
}

func TestSaveLoadScenarioSet(t *testing.T) {
	set := &ScenarioSet{
		Name:        "round trip",
		Description: "json and yaml",
		Scenarios: []Scenario{
			smallScenario("a").WithFilter(kernels.KindLaplacian).WithSepia(true).Build(),
			smallScenario("b").WithExportFormat(images.FormatWebP).WithWorkers(3).Build(),
		},
	}

	for _, name := range []string{"set.json", "set.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveScenarioSet(set, path))

			loaded, err := LoadScenarioSet(path)
			require.NoError(t, err)
			assert.Equal(t, set, loaded)
		})
	}
}

func TestLoadScenarioSetMissing(t *testing.T) {
	_, err := LoadScenarioSet(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSyntheticCorpus(t *testing.T) {
	corpus := SyntheticCorpus(3, smallRes)
	require.Len(t, corpus, 3)

	sums := map[string]bool{}
	for _, img := range corpus {
		assert.Equal(t, smallRes.Width, img.Width())
		assert.Equal(t, smallRes.Height, img.Height())
		sums[images.ComputeChecksum(img.NRGBA())] = true
	}
	assert.Len(t, sums, 3)

	assert.Nil(t, SyntheticCorpus(0, smallRes))
	assert.Nil(t, SyntheticCorpus(2, images.Resolution{}))
}

func TestRunScenario(t *testing.T) {
	corpus := SyntheticCorpus(2, smallRes)
	prof := profiler.New(profiler.Options{})
	suite := NewSuite(NewSuiteArgs{OutputPath: t.TempDir(), Profiler: prof})
	suite.SetCorpus(corpus)

	scenario := smallScenario("blend_png").
		WithMode(params.ModeNameBlend).
		WithGrayscale(true).
		WithExportFormat(images.FormatPNG).
		Build()

	metrics, err := suite.RunScenario(context.Background(), scenario)
	require.NoError(t, err)

	assert.Equal(t, smallRes, metrics.Resolution)
	assert.Zero(t, metrics.ErrorRate)
	assert.Positive(t, metrics.FramesPerSecond)
	assert.Positive(t, metrics.EncodedBytes)
	assert.Positive(t, metrics.CPUStats.Workers)

	// The last iteration renders corpus[0] under corpus[1].
	p, err := scenario.Params()
	require.NoError(t, err)
	surf, err := surface.New(smallRes, surface.Options{Workers: 1})
	require.NoError(t, err)
	surf.SetBackground(corpus[0])
	surf.SetForeground(corpus[1])
	frame, err := surf.Render(p)
	require.NoError(t, err)
	assert.Equal(t, images.ComputeChecksum(frame.NRGBA()), metrics.Checksum)

	render, ok := prof.Operation("render")
	require.True(t, ok)
	assert.EqualValues(t, scenario.Iterations+scenario.WarmupRuns, render.Count)
	encode, ok := prof.Operation("encode")
	require.True(t, ok)
	assert.EqualValues(t, scenario.Iterations+scenario.WarmupRuns, encode.Count)
}

func TestRunScenarioErrors(t *testing.T) {
	suite := NewSuite(NewSuiteArgs{OutputPath: t.TempDir()})

	_, err := suite.RunScenario(context.Background(), smallScenario("no corpus").Build())
	assert.Error(t, err)

	suite.SetCorpus(SyntheticCorpus(1, smallRes))

	_, err = suite.RunScenario(context.Background(), smallScenario("zero").WithIterations(0).Build())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = suite.RunScenario(ctx, smallScenario("cancelled").Build())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunAllScenariosSavesResults(t *testing.T) {
	dir := t.TempDir()
	suite := NewSuite(NewSuiteArgs{OutputPath: dir})
	suite.SetCorpus(SyntheticCorpus(2, smallRes))

	suite.AddScenario(smallScenario("smooth").WithFilter(kernels.KindSmooth).Build())
	suite.AddScenario(smallScenario("broken").WithMode("sideways").Build())
	suite.AddScenario(smallScenario("webp").WithExportFormat(images.FormatWebP).Build())

	require.NoError(t, suite.RunAllScenarios(context.Background()))

	results := suite.GetResults()
	require.Len(t, results, 2)
	assert.Equal(t, "smooth", results[0].Scenario.Name)
	assert.Equal(t, "webp", results[1].Scenario.Name)

	jsonFiles, err := filepath.Glob(filepath.Join(dir, "benchmark_results_*.json"))
	require.NoError(t, err)
	assert.Len(t, jsonFiles, 1)

	csvFiles, err := filepath.Glob(filepath.Join(dir, "benchmark_summary_*.csv"))
	require.NoError(t, err)
	require.Len(t, csvFiles, 1)

	f, err := os.Open(csvFiles[0])
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, summaryHeader, rows[0])
	assert.Equal(t, "16x12", rows[1][3])
}

func TestLoadCorpus(t *testing.T) {
	dir := t.TempDir()
	for i, img := range SyntheticCorpus(2, smallRes) {
		path := filepath.Join(dir, "frame-"+string(rune('1'+i))+".png")
		require.NoError(t, images.SaveFile(img.NRGBA(), path, images.EncodeOptions{}))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame-9.png"), []byte("junk"), 0o644))

	suite := NewSuite(NewSuiteArgs{OutputPath: t.TempDir()})
	n, err := suite.LoadCorpus(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = suite.LoadCorpus(filepath.Join(dir, "frame-1.png"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	empty := t.TempDir()
	_, err = suite.LoadCorpus(empty)
	assert.Error(t, err)
}

// Benchmark test for the framework itself
func BenchmarkScenarioCreation(b *testing.B) {
	predefined := &PredefinedScenarios{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = predefined.GetComprehensiveScenarios()
	}
}

func BenchmarkRunScenario(b *testing.B) {
	suite := NewSuite(NewSuiteArgs{OutputPath: b.TempDir()})
	suite.SetCorpus(SyntheticCorpus(2, images.Resolution{Width: 64, Height: 64}))
	scenario := NewScenarioBuilder("bench").
		WithResolution(images.Resolution{Width: 64, Height: 64}).
		WithFilter(kernels.KindGradient).
		WithIterations(1).
		WithWarmupRuns(0).
		Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := suite.RunScenario(context.Background(), scenario); err != nil {
			b.Fatal(err)
		}
	}
}
