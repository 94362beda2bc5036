package workers

import (
	"context"
	"log/slog"
	"time"

	"gatekeeper/contract"
	"gatekeeper/observability"
)

var _ contract.Worker = (*ReporterWorker)(nil)

// ReporterWorker logs a metrics snapshot on a fixed interval so an
// operator tailing the log can see the gate working.
type ReporterWorker struct {
	metrics  *observability.Metrics
	interval time.Duration
	log      *slog.Logger
}

func NewReporterWorker(metrics *observability.Metrics, interval time.Duration, log *slog.Logger) *ReporterWorker {
	return &ReporterWorker{metrics: metrics, interval: interval, log: log}
}

func (w *ReporterWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.report()
			return ctx.Err()
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *ReporterWorker) report() {
	stats := w.metrics.Snapshot()
	w.log.Info("Gate metrics",
		"events", stats.EventsSeen,
		"stale", stats.StaleEvents,
		"unpaired_dropped", stats.UnknownChats,
		"allowed", stats.Allowed,
		"removed", stats.Removed,
		"timeouts", stats.Timeouts,
		"actions_failed", stats.ActionsFailed,
		"actions_dropped", stats.ActionsDropped,
	)
}
