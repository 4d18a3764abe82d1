// Package observability collects the relay's runtime figures for the status endpoint and logs.
package observability

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

// RoomStats is what the room exposes about itself.
type RoomStats interface {
	Participants() int
	PendingTokens(ctx context.Context) (int, error)
}

// RelayStats aggregates room and process figures.
type RelayStats struct {
	Participants  int       `json:"participants"`
	PendingTokens int       `json:"pending_tokens"`
	RSSBytes      uint64    `json:"rss_bytes"`
	CPUPercent    float64   `json:"cpu_percent"`
	AllocMemMb    uint64    `json:"alloc_mem_mb"`
	NumGC         uint32    `json:"num_gc"`
	Goroutines    int       `json:"goroutines"`
	CollectedAt   time.Time `json:"collected_at"`
}

// MonitoringManager samples RelayStats and keeps the latest snapshot.
type MonitoringManager struct {
	log    *slog.Logger
	room   RoomStats
	proc   *process.Process
	mu     sync.RWMutex
	latest RelayStats
}

// NewMonitoringManager attaches to the current process. Process figures stay at zero
// when the platform does not expose them.
func NewMonitoringManager(log *slog.Logger, room RoomStats) *MonitoringManager {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Process stats unavailable", "error", err)
		p = nil
	}
	return &MonitoringManager{log: log, room: room, proc: p}
}

// Collect takes a fresh snapshot and remembers it.
// A failing pending token read is reported but the rest of the snapshot is still returned.
func (mm *MonitoringManager) Collect(ctx context.Context) (RelayStats, error) {
	stats := RelayStats{
		Participants: mm.room.Participants(),
		Goroutines:   runtime.NumGoroutine(),
		CollectedAt:  time.Now().UTC(),
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.AllocMemMb = m.Alloc / 1024 / 1024
	stats.NumGC = m.NumGC

	if mm.proc != nil {
		if memInfo, err := mm.proc.MemoryInfo(); err == nil {
			stats.RSSBytes = memInfo.RSS
		}
		if cpuPercent, err := mm.proc.CPUPercent(); err == nil {
			stats.CPUPercent = cpuPercent
		}
	}

	pending, err := mm.room.PendingTokens(ctx)
	stats.PendingTokens = pending

	mm.mu.Lock()
	mm.latest = stats
	mm.mu.Unlock()
	return stats, err
}

func (mm *MonitoringManager) GetLatest() RelayStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latest
}
