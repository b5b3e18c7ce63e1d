package observability

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthStats is the snapshot served on /healthz.
type HealthStats struct {
	Status         string    `json:"status"`
	PID            int       `json:"pid"`
	CPUPercent     float64   `json:"cpu_percent"`
	RAMPercent     float32   `json:"ram_percent"`
	AllocMemMb     uint64    `json:"alloc_mem_mb"`
	NumGC          uint32    `json:"num_gc"`
	Goroutines     int       `json:"goroutines"`
	ActiveSessions int64     `json:"active_sessions"`
	Requests       uint64    `json:"requests"`
	Degraded       uint64    `json:"degraded"`
	UptimeSeconds  float64   `json:"uptime_seconds"`
	SampledAt      time.Time `json:"sampled_at"`
}

// MonitoringManager samples process health on a ticker and keeps the latest snapshot.
type MonitoringManager struct {
	log       *slog.Logger
	mu        sync.RWMutex
	latest    HealthStats
	startedAt time.Time
	proc      *process.Process

	requests       uint64
	degraded       uint64
	activeSessions int64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	mm := &MonitoringManager{
		log:       log,
		startedAt: time.Now(),
		latest:    HealthStats{Status: "starting", PID: os.Getpid()},
	}
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Process stats unavailable", "error", err)
	} else {
		mm.proc = p
	}
	return mm
}

func (mm *MonitoringManager) IncrRequests() {
	atomic.AddUint64(&mm.requests, 1)
}

// IncrDegraded counts requests answered through a fallback path.
func (mm *MonitoringManager) IncrDegraded() {
	atomic.AddUint64(&mm.degraded, 1)
}

func (mm *MonitoringManager) SetActiveSessions(n int) {
	atomic.StoreInt64(&mm.activeSessions, int64(n))
}

// Listen refreshes the snapshot every interval until ctx is done.
func (mm *MonitoringManager) Listen(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	mm.updateStats()
	for {
		select {
		case <-ctx.Done():
			mm.log.Debug("Monitoring manager stopped")
			return
		case <-ticker.C:
			mm.updateStats()
		}
	}
}

func (mm *MonitoringManager) updateStats() {
	stats := HealthStats{
		Status:         "ok",
		PID:            os.Getpid(),
		Goroutines:     runtime.NumGoroutine(),
		ActiveSessions: atomic.LoadInt64(&mm.activeSessions),
		Requests:       atomic.LoadUint64(&mm.requests),
		Degraded:       atomic.LoadUint64(&mm.degraded),
		UptimeSeconds:  time.Since(mm.startedAt).Seconds(),
		SampledAt:      time.Now().UTC(),
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.AllocMemMb = m.Alloc / 1024 / 1024
	stats.NumGC = m.NumGC

	if mm.proc != nil {
		if cpu, err := mm.proc.CPUPercent(); err == nil {
			stats.CPUPercent = cpu
		} else {
			mm.log.Debug("Error while finding process cpu usage", "error", err)
		}
		if ram, err := mm.proc.MemoryPercent(); err == nil {
			stats.RAMPercent = ram
		} else {
			mm.log.Debug("Error while finding process ram usage", "error", err)
		}
	}

	mm.mu.Lock()
	mm.latest = stats
	mm.mu.Unlock()

	mm.log.Debug("Health stats updated",
		"cpu", stats.CPUPercent,
		"mem_mb", stats.AllocMemMb,
		"sessions", stats.ActiveSessions,
	)
}

// GetLatest returns the last snapshot, sampling once if none was taken yet.
func (mm *MonitoringManager) GetLatest() HealthStats {
	mm.mu.RLock()
	latest := mm.latest
	mm.mu.RUnlock()
	if latest.SampledAt.IsZero() {
		mm.updateStats()
		mm.mu.RLock()
		latest = mm.latest
		mm.mu.RUnlock()
	}
	return latest
}
