// Package sink delivers operator notices to their destinations.
package sink

import (
	"log/slog"

	"gatekeeper/contract"
	"gatekeeper/domain/event"
)

var _ contract.NoticeSink = (*LogSink)(nil)

// LogSink writes every notice to the structured log. Timeouts are
// warnings (they may be delivery lag, not spam); failures are errors.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Consume(n event.Notice) {
	switch n.(type) {
	case event.AmbiguousTimeout:
		s.log.Warn(n.Summary())
	default:
		s.log.Error(n.Summary())
	}
}
