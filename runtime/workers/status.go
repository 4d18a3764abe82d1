package workers

import (
	"chat-relay/observability"
	"context"
	"log/slog"
	"time"
)

// StatusWorker logs a relay status line at a fixed interval.
type StatusWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	interval   time.Duration
}

func NewStatusWorker(log *slog.Logger, monitoring *observability.MonitoringManager, interval time.Duration) *StatusWorker {
	return &StatusWorker{log: log, monitoring: monitoring, interval: interval}
}

// Run returns at once when the interval is not positive.
func (w *StatusWorker) Run(ctx context.Context) error {
	if w.interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats, err := w.monitoring.Collect(ctx)
			if err != nil {
				w.log.Warn("Incomplete relay status", "error", err)
			}
			w.log.Info("Relay status",
				"participants", stats.Participants,
				"pending_tokens", stats.PendingTokens,
				"rss_bytes", stats.RSSBytes,
				"cpu_percent", stats.CPUPercent,
				"goroutines", stats.Goroutines)
		}
	}
}
