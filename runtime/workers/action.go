package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gatekeeper/contract"
	"gatekeeper/domain/action"
	"gatekeeper/domain/event"
	"gatekeeper/observability"
)

var _ contract.Worker = (*ActionWorker)(nil)

// ActionWorker drains the engine's side-effect queue into the platform
// client. Delivery failures are reported, never retried here, and
// never fed back into the engine: a failed kick does not change the
// verdict that requested it.
type ActionWorker struct {
	client  contract.ActionClient
	actions chan action.Action
	notices chan<- event.Notice
	metrics *observability.Metrics
	timeout time.Duration
	log     *slog.Logger
}

func NewActionWorker(
	client contract.ActionClient,
	actions chan action.Action,
	notices chan<- event.Notice,
	metrics *observability.Metrics,
	timeout time.Duration,
	log *slog.Logger,
) *ActionWorker {
	return &ActionWorker{
		client:  client,
		actions: actions,
		notices: notices,
		metrics: metrics,
		timeout: timeout,
		log:     log,
	}
}

func (w *ActionWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case a, ok := <-w.actions:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			w.perform(ctx, a)
		}
	}
}

func (w *ActionWorker) perform(ctx context.Context, a action.Action) {
	callCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	var err error
	switch act := a.(type) {
	case action.DeleteMessage:
		err = w.client.DeleteMessage(callCtx, act.Chat, act.Message)
	case action.RemoveMember:
		err = w.client.RemoveMember(callCtx, act.Chat, act.User, act.Until)
	case action.LeaveChat:
		err = w.client.LeaveChat(callCtx, act.Chat)
	case action.SendReply:
		err = w.client.SendMessage(callCtx, act.Chat, act.ReplyTo, act.Text)
	default:
		w.log.Warn("Unknown action type", "action", a.Describe())
		return
	}
	if err != nil {
		w.metrics.IncrActionsFailed()
		w.log.Warn("Action delivery failed", "action", a.Describe(), "error", err)
		select {
		case w.notices <- event.ActionFailure{ID: uuid.New(), Action: a.Describe(), Err: err}:
		default:
			w.log.Warn("Notice channel full, dropping action failure")
		}
	}
}
