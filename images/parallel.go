package images

import (
	"runtime"
	"sync"

	"github.com/chewxy/math32"
)

// Clamp restricts value to the closed range [lo, hi].
//
// NaN inputs are returned unchanged.
//
// @example
// clamped := Clamp(1.7, 0, 1) // Returns 1
func Clamp(value, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, value))
}

// Parallel executes fn over [0, dataSize) split into contiguous partitions,
// one goroutine per CPU.
//
// Arguments:
// - dataSize: The size of the data to process (usually the row count).
// - fn: Function to execute for each partition (receives start and end indices).
//
// @example
//
//	Parallel(height, func(start, end int) {
//	    for y := start; y < end; y++ {
//	        // Process row y
//	    }
//	})
func Parallel(dataSize int, fn func(partStart, partEnd int)) {
	ParallelN(runtime.NumCPU(), dataSize, fn)
}

// ParallelN is Parallel with an explicit worker count. A count below 2 runs
// fn serially on the calling goroutine.
func ParallelN(workers, dataSize int, fn func(partStart, partEnd int)) {
	if dataSize <= 0 {
		return
	}

	// For small data sizes, parallel processing overhead isn't worth it.
	if workers < 2 || dataSize < workers*2 {
		fn(0, dataSize)
		return
	}

	partSize := dataSize / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		partStart := i * partSize
		partEnd := partStart + partSize

		// Last partition gets any remaining data.
		if i == workers-1 {
			partEnd = dataSize
		}

		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(partStart, partEnd)
	}

	wg.Wait()
}
