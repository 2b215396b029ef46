// Package benchmark measures render throughput of the compositing surface.
package benchmark

import (
	"time"

	"github.com/nvr-ai/go-composite/images"
)

// PerformanceMetrics captures detailed performance data
type PerformanceMetrics struct {
	Scenario  Scenario  `json:"scenario"`
	Timestamp time.Time `json:"timestamp"`
	// Resolution is the resolved output size.
	Resolution      images.Resolution `json:"resolution"`
	TotalDuration   time.Duration     `json:"total_duration"`
	UploadDuration  time.Duration     `json:"upload_duration"`
	RenderDuration  time.Duration     `json:"render_duration"`
	EncodeDuration  time.Duration     `json:"encode_duration"`
	FramesPerSecond float64           `json:"frames_per_second"`
	MemoryStats     MemoryMetrics     `json:"memory_stats"`
	CPUStats        CPUMetrics        `json:"cpu_stats"`
	EncodedBytes    int64             `json:"encoded_bytes"`
	// Checksum identifies the last rendered frame.
	Checksum  string  `json:"checksum"`
	ErrorRate float64 `json:"error_rate"`
}

// MemoryMetrics captures memory usage statistics
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"`
}

// CPUMetrics captures CPU usage statistics
type CPUMetrics struct {
	NumCPU     int `json:"num_cpu"`
	Workers    int `json:"workers"`
	GOMAXPROCS int `json:"gomaxprocs"`
}
