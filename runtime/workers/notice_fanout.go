package workers

import (
	"context"
	"log/slog"

	"gatekeeper/contract"
	"gatekeeper/domain/event"
)

var _ contract.Worker = (*NoticeFanout)(nil)

// NoticeFanout broadcasts operator notices to multiple in-process
// consumers.
//
// It provides best-effort fan-out with no guarantees regarding
// delivery, ordering, durability, or retries. NoticeFanout is not a
// message broker. It carries reports to operators (logs, mail), never
// domain decisions.
type NoticeFanout struct {
	log     *slog.Logger
	notices chan event.Notice
	sinks   []contract.NoticeSink
}

func NewNoticeFanout(log *slog.Logger, notices chan event.Notice, sinks ...contract.NoticeSink) *NoticeFanout {
	return &NoticeFanout{log: log, notices: notices, sinks: sinks}
}

func (w *NoticeFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping notice fanout")
			return ctx.Err()
		case n, ok := <-w.notices:
			if !ok {
				return nil
			}
			w.fanout(n)
		}
	}
}

// fanout: one sink after another, a slow sink buffers internally.
func (w *NoticeFanout) fanout(n event.Notice) {
	for _, sink := range w.sinks {
		sink.Consume(n)
	}
}
