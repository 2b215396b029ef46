package kernels

import (
	"image"
	"runtime"
	"time"

	"github.com/nvr-ai/go-composite/images"
)

// ApplyMemoryProfile summarizes the allocation behavior of repeated Apply
// calls on one image.
type ApplyMemoryProfile struct {
	Kind       Kind          `json:"kind"`
	ImageSize  image.Point   `json:"image_size"`
	Iterations int           `json:"iterations"`
	Duration   time.Duration `json:"duration"`

	AllocationsPerIteration uint64        `json:"allocations_per_iteration"`
	BytesPerIteration       uint64        `json:"bytes_per_iteration"`
	AvgIterationTime        time.Duration `json:"avg_iteration_time"`
	GCCycles                uint32        `json:"gc_cycles"`
	GCPauseTotal            time.Duration `json:"gc_pause_total"`
}

// ProfileApply runs Apply iterations times and reports heap allocations and
// GC activity per iteration. It forces a collection before measuring.
//
// Arguments:
// - kind: The filter to profile.
// - img: The source image.
// - opts: Options passed through to Apply.
// - iterations: Number of Apply calls. Values below 1 are treated as 1.
//
// Returns:
// - The profile, or nil when img is nil.
func ProfileApply(kind Kind, img *images.Image, opts Options, iterations int) *ApplyMemoryProfile {
	if img == nil {
		return nil
	}
	if iterations < 1 {
		iterations = 1
	}

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	start := time.Now()
	for i := 0; i < iterations; i++ {
		_ = Apply(kind, img, opts)
	}
	elapsed := time.Since(start)

	runtime.ReadMemStats(&after)

	n := uint64(iterations)
	return &ApplyMemoryProfile{
		Kind:                    kind,
		ImageSize:               img.Bounds().Size(),
		Iterations:              iterations,
		Duration:                elapsed,
		AllocationsPerIteration: (after.Mallocs - before.Mallocs) / n,
		BytesPerIteration:       (after.TotalAlloc - before.TotalAlloc) / n,
		AvgIterationTime:        elapsed / time.Duration(iterations),
		GCCycles:                after.NumGC - before.NumGC,
		GCPauseTotal:            time.Duration(after.PauseTotalNs - before.PauseTotalNs),
	}
}
