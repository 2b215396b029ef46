// Package profiler collects render timings and runtime statistics and
// reports them periodically through the shared logger.
package profiler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/nvr-ai/go-composite/logging"
)

// MetricsCollector is polled on every sample tick for gauge-style metrics.
type MetricsCollector interface {
	CollectMetrics() map[string]float64
}

// Options configures a RuntimeProfiler.
type Options struct {
	// ReportInterval specifies how often to emit status reports (default: 2s).
	ReportInterval time.Duration
	// SampleInterval specifies how often to poll collectors (default: 100ms).
	SampleInterval time.Duration
	// MaxSamples bounds the window kept per metric and operation (default: 600).
	MaxSamples int
}

// RuntimeProfiler tracks operation timings and custom metrics over a sliding
// window. It is safe for concurrent use.
type RuntimeProfiler struct {
	reportInterval time.Duration
	sampleInterval time.Duration
	maxSamples     int

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	startTime  time.Time
	memStats   runtime.MemStats
	lastGC     uint32
	metrics    map[string]*MetricTracker
	operations map[string]*TimeTracker
	collectors []MetricsCollector
}

// MetricTracker keeps a sliding window of values for one metric.
type MetricTracker struct {
	values []float64
	sum    float64
	min    float64
	max    float64
	count  int64
}

// TimeTracker keeps a sliding window of durations for one operation.
type TimeTracker struct {
	durations []time.Duration
	total     time.Duration
	min       time.Duration
	max       time.Duration
	count     int64
}

// MetricStats summarizes a MetricTracker window.
type MetricStats struct {
	Avg, Min, Max float64
	Samples       int
	Count         int64
}

// OperationStats summarizes a TimeTracker window.
type OperationStats struct {
	Avg, Min, Max time.Duration
	Samples       int
	Count         int64
}

// New creates a profiler. It does nothing until Start is called, except
// record what it is given.
//
// Arguments:
// - opts: Configuration options for the profiler.
//
// Returns:
// - A configured RuntimeProfiler instance.
func New(opts Options) *RuntimeProfiler {
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = 2 * time.Second
	}
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = 100 * time.Millisecond
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = 600
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RuntimeProfiler{
		reportInterval: opts.ReportInterval,
		sampleInterval: opts.SampleInterval,
		maxSamples:     opts.MaxSamples,
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
		metrics:        make(map[string]*MetricTracker),
		operations:     make(map[string]*TimeTracker),
	}
}

// Start launches the sampling and reporting goroutines. Calling it twice is
// a no-op; calling it after Stop is also a no-op.
func (rp *RuntimeProfiler) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.running || rp.ctx.Err() != nil {
		return
	}
	rp.running = true
	rp.startTime = time.Now()

	rp.wg.Add(2)
	go rp.loop(rp.sampleInterval, rp.sample)
	go rp.loop(rp.reportInterval, rp.Report)
}

// Stop cancels the background goroutines and waits for them.
func (rp *RuntimeProfiler) Stop() {
	rp.mu.Lock()
	rp.running = false
	rp.mu.Unlock()

	rp.cancel()
	rp.wg.Wait()
}

func (rp *RuntimeProfiler) loop(every time.Duration, fn func()) {
	defer rp.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rp.ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// AddMetricsCollector registers c to be polled on every sample tick.
func (rp *RuntimeProfiler) AddMetricsCollector(c MetricsCollector) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.collectors = append(rp.collectors, c)
}

// RecordMetric adds one value to the named metric.
func (rp *RuntimeProfiler) RecordMetric(name string, value float64) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.recordMetric(name, value)
}

func (rp *RuntimeProfiler) recordMetric(name string, value float64) {
	t, ok := rp.metrics[name]
	if !ok {
		t = &MetricTracker{min: value, max: value}
		rp.metrics[name] = t
	}
	t.values = append(t.values, value)
	t.sum += value
	if len(t.values) > rp.maxSamples {
		t.sum -= t.values[0]
		t.values = t.values[1:]
	}
	t.count++
	t.min = min(t.min, value)
	t.max = max(t.max, value)
}

// StartOperation begins timing an operation.
//
// Returns:
// - A function to call when the operation completes.
//
// @example
// done := rp.StartOperation("render")
// defer done()
func (rp *RuntimeProfiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		rp.RecordDuration(name, time.Since(start))
	}
}

// RecordDuration adds one completed operation time.
func (rp *RuntimeProfiler) RecordDuration(name string, d time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	t, ok := rp.operations[name]
	if !ok {
		t = &TimeTracker{min: d, max: d}
		rp.operations[name] = t
	}
	t.durations = append(t.durations, d)
	t.total += d
	if len(t.durations) > rp.maxSamples {
		t.total -= t.durations[0]
		t.durations = t.durations[1:]
	}
	t.count++
	t.min = min(t.min, d)
	t.max = max(t.max, d)
}

// sample polls the collectors and refreshes the memory statistics.
func (rp *RuntimeProfiler) sample() {
	rp.mu.Lock()
	collectors := append([]MetricsCollector(nil), rp.collectors...)
	rp.mu.Unlock()

	// Collectors may take their own locks, so they run unlocked.
	collected := make([]map[string]float64, 0, len(collectors))
	for _, c := range collectors {
		collected = append(collected, c.CollectMetrics())
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.memStats = ms
	for _, m := range collected {
		for name, v := range m {
			rp.recordMetric(name, v)
		}
	}
}

// Metric returns the window statistics of a metric.
func (rp *RuntimeProfiler) Metric(name string) (MetricStats, bool) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	t, ok := rp.metrics[name]
	if !ok || len(t.values) == 0 {
		return MetricStats{}, false
	}
	return MetricStats{
		Avg:     t.sum / float64(len(t.values)),
		Min:     t.min,
		Max:     t.max,
		Samples: len(t.values),
		Count:   t.count,
	}, true
}

// Operation returns the window statistics of an operation.
func (rp *RuntimeProfiler) Operation(name string) (OperationStats, bool) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	t, ok := rp.operations[name]
	if !ok || len(t.durations) == 0 {
		return OperationStats{}, false
	}
	return OperationStats{
		Avg:     t.total / time.Duration(len(t.durations)),
		Min:     t.min,
		Max:     t.max,
		Samples: len(t.durations),
		Count:   t.count,
	}, true
}

// Report logs a status report at info level.
func (rp *RuntimeProfiler) Report() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	log := logging.Logger()
	log.Info("profiler status",
		"uptime", time.Since(rp.startTime).Truncate(time.Millisecond),
		"goroutines", runtime.NumGoroutine(),
		slog.Group("memory",
			"heap_alloc", formatBytes(rp.memStats.HeapAlloc),
			"total_alloc", formatBytes(rp.memStats.TotalAlloc),
			"sys", formatBytes(rp.memStats.Sys),
			"gc_cycles", rp.memStats.NumGC,
			"gc_new", rp.memStats.NumGC-rp.lastGC,
		),
	)
	rp.lastGC = rp.memStats.NumGC

	for _, name := range sortedKeys(rp.operations) {
		t := rp.operations[name]
		if len(t.durations) == 0 {
			continue
		}
		log.Info("operation timing",
			"name", name,
			"avg", (t.total / time.Duration(len(t.durations))).Truncate(time.Microsecond),
			"min", t.min.Truncate(time.Microsecond),
			"max", t.max.Truncate(time.Microsecond),
			"count", t.count,
		)
	}
	for _, name := range sortedKeys(rp.metrics) {
		t := rp.metrics[name]
		if len(t.values) == 0 {
			continue
		}
		log.Info("metric",
			"name", name,
			"avg", t.sum/float64(len(t.values)),
			"min", t.min,
			"max", t.max,
			"samples", len(t.values),
		)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
