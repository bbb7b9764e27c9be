package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"messenger-lab/observability"
)

// HeartbeatWorker periodically logs process self stats (RSS, CPU, OS
// status) together with the coordinator counters. It is the only
// consumer of the Monitor snapshot.
type HeartbeatWorker struct {
	log      *slog.Logger
	monitor  *observability.Monitor
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, monitor *observability.Monitor,
	interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, monitor: monitor, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			stats := w.monitor.Snapshot()
			w.log.Info("Heartbeat",
				"pid", os.Getpid(),
				"pid_status", status,
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"connections_open", stats.ConnectionsOpen,
				"logins", stats.Logins,
				"messages_persisted", stats.MessagesPersisted,
				"messages_delivered", stats.MessagesDelivered,
				"broadcasts", stats.Broadcasts,
				"dropped_frames", stats.DroppedFrames,
				"store_errors", stats.StoreErrors,
				"alloc_mem_mb", stats.AllocMemMb,
				"num_gc", stats.NumGC,
			)
		}
	}
}

// selfStats retrieves technical metrics (memory, CPU, OS status) for
// the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpu, status, nil
}
