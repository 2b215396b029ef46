package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-composite/images"
	"github.com/nvr-ai/go-composite/images/kernels"
	"github.com/nvr-ai/go-composite/params"
)

// Scenario defines one render configuration to measure.
//
// The render parameters are a params.Preset applied on top of
// params.Default(), so scenario files use the same keys as preset files.
type Scenario struct {
	Name          string `json:"name" yaml:"name"`
	params.Preset `yaml:",inline"`

	// Format is the export format timed after each render. Empty skips encoding.
	Format     images.ImageFormat `json:"format,omitempty"  yaml:"format,omitempty"`
	Edge       string             `json:"edge,omitempty"    yaml:"edge,omitempty"`
	Workers    int                `json:"workers,omitempty" yaml:"workers,omitempty"`
	Iterations int                `json:"iterations"        yaml:"iterations"`
	WarmupRuns int                `json:"warmup_runs"       yaml:"warmup_runs"`
}

// Params resolves the scenario's render parameters.
func (s Scenario) Params() (params.FilterParameters, error) {
	p, err := s.Preset.Apply(params.Default())
	if err != nil {
		return params.FilterParameters{}, errors.Wrapf(err, "scenario %s", s.Name)
	}
	return p, nil
}

// ScenarioBuilder helps build test scenarios with fluent API
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a builder for a background-only, unfiltered
// render at the default resolution.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	return &ScenarioBuilder{
		scenario: Scenario{
			Name: name,
			Preset: params.Preset{
				Mode:   params.ModeNameBackground,
				Width:  images.DefaultResolution.Width,
				Height: images.DefaultResolution.Height,
			},
			Iterations: 100,
			WarmupRuns: 10,
		},
	}
}

// WithResolution sets the output size.
func (sb *ScenarioBuilder) WithResolution(res images.Resolution) *ScenarioBuilder {
	sb.scenario.Size = ""
	sb.scenario.Width = res.Width
	sb.scenario.Height = res.Height
	return sb
}

// WithMode sets the render mode by preset name.
func (sb *ScenarioBuilder) WithMode(mode string) *ScenarioBuilder {
	sb.scenario.Mode = mode
	return sb
}

// WithFilter sets the background filter.
func (sb *ScenarioBuilder) WithFilter(kind kernels.Kind) *ScenarioBuilder {
	sb.scenario.Filter = kind.String()
	return sb
}

// WithGrayscale toggles the grayscale stage.
func (sb *ScenarioBuilder) WithGrayscale(on bool) *ScenarioBuilder {
	sb.scenario.GrayScale = &on
	return sb
}

// WithSepia toggles the sepia stage.
func (sb *ScenarioBuilder) WithSepia(on bool) *ScenarioBuilder {
	sb.scenario.Sepia = &on
	return sb
}

// WithContrastBrightness sets the final adjustment.
func (sb *ScenarioBuilder) WithContrastBrightness(contrast, brightness float32) *ScenarioBuilder {
	sb.scenario.Contrast = &contrast
	sb.scenario.Brightness = &brightness
	return sb
}

// WithExportFormat times an encode into format after every render.
func (sb *ScenarioBuilder) WithExportFormat(format images.ImageFormat) *ScenarioBuilder {
	sb.scenario.Format = format
	return sb
}

// WithEdge sets the sampling edge mode.
func (sb *ScenarioBuilder) WithEdge(mode kernels.EdgeMode) *ScenarioBuilder {
	sb.scenario.Edge = mode.String()
	return sb
}

// WithWorkers bounds the render goroutines.
func (sb *ScenarioBuilder) WithWorkers(workers int) *ScenarioBuilder {
	sb.scenario.Workers = workers
	return sb
}

// WithIterations sets the number of test iterations
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWarmupRuns sets the number of warmup runs
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured test scenario
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet represents a collection of related test scenarios
type ScenarioSet struct {
	Name        string     `json:"name"        yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Scenarios   []Scenario `json:"scenarios"   yaml:"scenarios"`
}

// Filters lists every filter kind in declaration order.
var Filters = []kernels.Kind{
	kernels.KindNone,
	kernels.KindSmooth,
	kernels.KindSharpen,
	kernels.KindLaplacian,
	kernels.KindGradient,
}

// ExportFormats lists the encoders compared by the format scenarios.
var ExportFormats = []images.ImageFormat{images.FormatPNG, images.FormatJPEG, images.FormatWebP}

// PredefinedScenarios contains common benchmark scenario sets
type PredefinedScenarios struct{}

// GetQuickScenarios renders each filter at VGA with a short run.
func (ps *PredefinedScenarios) GetQuickScenarios() *ScenarioSet {
	res, _ := images.GetResolutionByType(images.ResolutionTypeVGA)

	scenarios := make([]Scenario, 0, len(Filters)+1)
	for _, kind := range Filters {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("quick_%s", kind)).
			WithResolution(res).
			WithFilter(kind).
			WithIterations(20).
			WithWarmupRuns(2).
			Build())
	}
	scenarios = append(scenarios, NewScenarioBuilder("quick_blend").
		WithResolution(res).
		WithMode(params.ModeNameBlend).
		WithIterations(20).
		WithWarmupRuns(2).
		Build())

	return &ScenarioSet{
		Name:        "Quick Performance Test",
		Description: "Every background filter and the blend path at VGA",
		Scenarios:   scenarios,
	}
}

// GetComprehensiveScenarios crosses every named resolution with every filter,
// with and without the color stages.
func (ps *PredefinedScenarios) GetComprehensiveScenarios() *ScenarioSet {
	scenarios := make([]Scenario, 0)

	for _, name := range images.ResolutionNames() {
		res, _ := images.GetResolutionByType(name)
		for _, kind := range Filters {
			for _, color := range []bool{false, true} {
				scenarioName := fmt.Sprintf("%s_%s", name, kind)
				if color {
					scenarioName += "_color"
				}
				scenarios = append(scenarios, NewScenarioBuilder(scenarioName).
					WithResolution(res).
					WithFilter(kind).
					WithGrayscale(color).
					WithSepia(color).
					WithContrastBrightness(0.2, 1.2).
					Build())
			}
		}
	}

	return &ScenarioSet{
		Name:        "Comprehensive Performance Test",
		Description: "Tests all combinations of resolutions, filters and color stages",
		Scenarios:   scenarios,
	}
}

// GetResolutionComparisonScenarios renders one filter at every named resolution.
func (ps *PredefinedScenarios) GetResolutionComparisonScenarios(kind kernels.Kind) *ScenarioSet {
	scenarios := make([]Scenario, 0)

	for _, name := range images.ResolutionNames() {
		res, _ := images.GetResolutionByType(name)
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("resolution_%s_%s", kind, name)).
			WithResolution(res).
			WithFilter(kind).
			Build())
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Resolution Comparison - %s", kind),
		Description: fmt.Sprintf("Compares output resolutions for the %s filter", kind),
		Scenarios:   scenarios,
	}
}

// GetFormatComparisonScenarios times each export encoder at one resolution.
func (ps *PredefinedScenarios) GetFormatComparisonScenarios(res images.Resolution) *ScenarioSet {
	scenarios := make([]Scenario, 0, len(ExportFormats))

	for _, format := range ExportFormats {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("format_%s_%s", res, format)).
			WithResolution(res).
			WithExportFormat(format).
			Build())
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Format Comparison @ %s", res),
		Description: fmt.Sprintf("Compares export encoders at %s", res),
		Scenarios:   scenarios,
	}
}

// GetWorkerScalingScenarios renders the gradient filter with 1, 2, 4 ... up
// to maxWorkers goroutines.
func (ps *PredefinedScenarios) GetWorkerScalingScenarios(res images.Resolution, maxWorkers int) *ScenarioSet {
	scenarios := make([]Scenario, 0)

	for workers := 1; workers <= maxWorkers; workers *= 2 {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("workers_%s_%d", res, workers)).
			WithResolution(res).
			WithFilter(kernels.KindGradient).
			WithWorkers(workers).
			Build())
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Worker Scaling @ %s", res),
		Description: "Compares render parallelism",
		Scenarios:   scenarios,
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// SaveScenarioSet writes a scenario set as YAML when the file name ends in
// .yaml or .yml, JSON otherwise.
func SaveScenarioSet(scenarioSet *ScenarioSet, filename string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(filename) {
		data, err = yaml.Marshal(scenarioSet)
	} else {
		data, err = json.MarshalIndent(scenarioSet, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "marshal scenario set")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "write scenario file")
	}

	return nil
}

// LoadScenarioSet reads a scenario set written by SaveScenarioSet.
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario file")
	}

	var scenarioSet ScenarioSet
	if isYAML(filename) {
		err = yaml.Unmarshal(data, &scenarioSet)
	} else {
		err = json.Unmarshal(data, &scenarioSet)
	}
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal scenario set")
	}

	return &scenarioSet, nil
}
