package profiler

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Options configures the runtime profiler.
type Options struct {
	// SampleInterval specifies how often to collect runtime samples (default: 500ms)
	SampleInterval time.Duration
	// MaxSamples specifies maximum number of samples to keep (default: 600)
	MaxSamples int
}

// Metrics is a point-in-time snapshot of the profiler state.
type Metrics struct {
	Uptime       time.Duration `json:"uptime"`
	Frames       int64         `json:"frames"`
	AvgFrameTime time.Duration `json:"avg_frame_time"`
	MinFrameTime time.Duration `json:"min_frame_time"`
	MaxFrameTime time.Duration `json:"max_frame_time"`
	Goroutines   int           `json:"goroutines"`
	HeapAlloc    uint64        `json:"heap_alloc"`
	GCCycles     uint32        `json:"gc_cycles"`
}

// RuntimeProfiler tracks per-frame processing time and runtime health
// during a batch run.
//
// Frame durations are recorded by the batch loop via Record; heap and
// goroutine samples are collected by a background goroutine between
// Start and Stop. All methods are safe for concurrent use.
type RuntimeProfiler struct {
	sampleInterval time.Duration
	maxSamples     int

	mu        sync.Mutex
	startTime time.Time
	running   bool
	done      chan struct{}
	wg        sync.WaitGroup

	memStats runtime.MemStats

	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	frames    int64
}

// NewRuntimeProfiler creates a new runtime profiler with the specified options.
//
// Arguments:
// - opts: Configuration options for the profiler
//
// Returns:
// - A configured RuntimeProfiler instance
func NewRuntimeProfiler(opts Options) *RuntimeProfiler {
	if opts.SampleInterval == 0 {
		opts.SampleInterval = 500 * time.Millisecond
	}
	if opts.MaxSamples == 0 {
		opts.MaxSamples = 600
	}

	return &RuntimeProfiler{
		sampleInterval: opts.SampleInterval,
		maxSamples:     opts.MaxSamples,
		startTime:      time.Now(),
		durations:      make([]time.Duration, 0, opts.MaxSamples),
	}
}

// Start begins background runtime sampling. Safe to call more than once.
func (rp *RuntimeProfiler) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.running {
		return
	}
	rp.running = true
	rp.startTime = time.Now()
	rp.done = make(chan struct{})

	rp.wg.Add(1)
	go rp.sampleLoop(rp.done)
}

// Stop halts background sampling and waits for the sampler to exit.
func (rp *RuntimeProfiler) Stop() {
	rp.mu.Lock()
	if !rp.running {
		rp.mu.Unlock()
		return
	}
	rp.running = false
	close(rp.done)
	rp.mu.Unlock()

	rp.wg.Wait()
}

// Record registers the processing time of one frame.
//
// Arguments:
// - d: Wall-clock duration spent analyzing the frame
func (rp *RuntimeProfiler) Record(d time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	rp.durations = append(rp.durations, d)
	if len(rp.durations) > rp.maxSamples {
		rp.totalTime -= rp.durations[0]
		rp.durations = rp.durations[1:]
	}

	rp.totalTime += d
	rp.frames++

	if rp.frames == 1 || d < rp.minTime {
		rp.minTime = d
	}
	if d > rp.maxTime {
		rp.maxTime = d
	}
}

// Snapshot returns the current profiling statistics.
//
// Returns:
// - A Metrics snapshot combining frame timings and runtime state
func (rp *RuntimeProfiler) Snapshot() Metrics {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	runtime.ReadMemStats(&rp.memStats)

	m := Metrics{
		Uptime:       time.Since(rp.startTime),
		Frames:       rp.frames,
		MinFrameTime: rp.minTime,
		MaxFrameTime: rp.maxTime,
		Goroutines:   runtime.NumGoroutine(),
		HeapAlloc:    rp.memStats.HeapAlloc,
		GCCycles:     rp.memStats.NumGC,
	}
	if len(rp.durations) > 0 {
		m.AvgFrameTime = rp.totalTime / time.Duration(len(rp.durations))
	}
	return m
}

// String formats a Metrics snapshot for log output.
func (m Metrics) String() string {
	return fmt.Sprintf("frames=%d avg=%v min=%v max=%v goroutines=%d heap=%s gc=%d uptime=%v",
		m.Frames,
		m.AvgFrameTime.Truncate(time.Microsecond),
		m.MinFrameTime.Truncate(time.Microsecond),
		m.MaxFrameTime.Truncate(time.Microsecond),
		m.Goroutines,
		formatBytes(m.HeapAlloc),
		m.GCCycles,
		m.Uptime.Truncate(time.Millisecond))
}

// sampleLoop keeps memStats fresh while the profiler runs.
func (rp *RuntimeProfiler) sampleLoop(done chan struct{}) {
	defer rp.wg.Done()

	ticker := time.NewTicker(rp.sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			rp.mu.Lock()
			runtime.ReadMemStats(&rp.memStats)
			rp.mu.Unlock()
		}
	}
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
