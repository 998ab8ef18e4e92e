package monitor

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/neox5/scrapebox/internal/metric"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// Monitor tracks process resource usage, logs it and publishes it as gauges.
type Monitor struct {
	interval time.Duration
	log      *zap.Logger
	wg       sync.WaitGroup
	proc     *process.Process

	cpuPercent *metric.Gauge
	rssBytes   *metric.Gauge
	goroutines *metric.Gauge
	heapAlloc  *metric.Gauge
}

// New creates a monitor sampling every interval and defines its gauges in reg.
func New(interval time.Duration, reg *metric.Registry, log *zap.Logger) (*Monitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to get process handle: %w", err)
	}

	m := &Monitor{
		interval: interval,
		log:      log,
		proc:     proc,
	}

	if m.cpuPercent, err = reg.DefineGauge("scrapebox_process_cpu_percent",
		"Process CPU usage in percent of one core"); err != nil {
		return nil, err
	}
	if m.rssBytes, err = reg.DefineGauge("scrapebox_process_resident_memory_bytes",
		"Process resident memory size in bytes"); err != nil {
		return nil, err
	}
	if m.goroutines, err = reg.DefineGauge("scrapebox_goroutines",
		"Number of goroutines"); err != nil {
		return nil, err
	}
	if m.heapAlloc, err = reg.DefineGauge("scrapebox_heap_alloc_bytes",
		"Bytes of allocated heap objects"); err != nil {
		return nil, err
	}

	return m, nil
}

// Run starts the monitoring loop in a background goroutine.
// The loop exits when ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.wg.Go(func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		// Immediate first collection
		m.collect()

		for {
			select {
			case <-ctx.Done():
				m.log.Info("monitor shutdown complete")
				return
			case <-ticker.C:
				m.collect()
			}
		}
	})
}

// Wait blocks until the monitor goroutine exits.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// collect reads current usage, updates the gauges and logs a compact line.
func (m *Monitor) collect() {
	processCPU, err := m.proc.CPUPercent()
	if err != nil {
		m.log.Warn("failed to get CPU percent", zap.Error(err))
		processCPU = 0
	}

	var rss uint64
	if mem, err := m.proc.MemoryInfo(); err != nil {
		m.log.Warn("failed to get memory info", zap.Error(err))
	} else {
		rss = mem.RSS
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	goroutines := runtime.NumGoroutine()

	m.cpuPercent.Set(processCPU)
	m.rssBytes.Set(float64(rss))
	m.goroutines.Set(float64(goroutines))
	m.heapAlloc.Set(float64(ms.HeapAlloc))

	mb := func(b uint64) float64 {
		return float64(b) / (1024 * 1024)
	}

	m.log.Info("resource",
		zap.String("cpu", fmt.Sprintf("%.4f%%", processCPU)),
		zap.Int("cores", runtime.GOMAXPROCS(-1)),
		zap.Int("gor", goroutines),
		zap.String("mem", fmt.Sprintf("rss:%.2fMB alloc:%.2fMB sys:%.2fMB", mb(rss), mb(ms.HeapAlloc), mb(ms.HeapSys))),
		zap.Uint32("gc", ms.NumGC),
	)
}
