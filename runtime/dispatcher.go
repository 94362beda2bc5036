// Package runtime routes inbound events into the engine. It owns the
// ordering guarantee: all events of one chat run on one lane, chats
// run concurrently with each other.
package runtime

import (
	"context"
	"log/slog"
	"sync"

	"gatekeeper/contract"
	"gatekeeper/domain"
	"gatekeeper/domain/event"
	errs "gatekeeper/errors"
	"gatekeeper/observability"
	"gatekeeper/pairing"
)

// Dispatcher fans inbound events out to per-chat lanes. A lane is a
// buffered channel drained by exactly one goroutine, so two events of
// the same chat are never processed concurrently. Events for chats no
// pair references are dropped before they cost anything.
type Dispatcher struct {
	log      *slog.Logger
	registry *pairing.Registry
	handler  contract.EventHandler
	metrics  *observability.Metrics
	inbound  chan event.Event
	laneSize int

	mu    sync.Mutex
	lanes map[domain.ChatID]chan event.Event
	wg    sync.WaitGroup
}

func NewDispatcher(
	log *slog.Logger,
	registry *pairing.Registry,
	handler contract.EventHandler,
	metrics *observability.Metrics,
	bufferSize, laneSize int,
) *Dispatcher {
	return &Dispatcher{
		log:      log,
		registry: registry,
		handler:  handler,
		metrics:  metrics,
		inbound:  make(chan event.Event, bufferSize),
		laneSize: laneSize,
		lanes:    make(map[domain.ChatID]chan event.Event),
	}
}

// Submit enqueues an event from the transport. It blocks when the
// inbound buffer is full, which is the backpressure signal the
// transport relies on instead of dropping updates.
func (d *Dispatcher) Submit(evt event.Event) {
	d.inbound <- evt
}

// Run drains the inbound stream until the context is cancelled, then
// waits for every lane to finish its queued work.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			d.log.Debug("Stopping dispatcher")
			return ctx.Err()
		case evt, ok := <-d.inbound:
			if !ok {
				d.log.Debug("Inbound channel is closed")
				return nil
			}
			d.route(ctx, evt)
		}
	}
}

func (d *Dispatcher) route(ctx context.Context, evt event.Event) {
	chat := evt.ChatID()
	if len(d.registry.PairsForChat(chat)) == 0 {
		d.metrics.IncrUnknownChats()
		d.log.Debug("Event for unpaired chat dropped", "reason", errs.ErrUnknownChat,
			"chat", chat, "seq", evt.Seq())
		return
	}

	select {
	case d.lane(ctx, chat) <- evt:
	case <-ctx.Done():
	}
}

// lane returns the chat's serialized queue, starting its drain
// goroutine on first use. Lanes live until shutdown; their count is
// bounded by the number of paired chats.
func (d *Dispatcher) lane(ctx context.Context, chat domain.ChatID) chan event.Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.lanes[chat]
	if ok {
		return ch
	}

	ch = make(chan event.Event, d.laneSize)
	d.lanes[chat] = ch
	d.wg.Add(1)
	go d.drain(ctx, chat, ch)
	return ch
}

func (d *Dispatcher) drain(ctx context.Context, chat domain.ChatID, ch chan event.Event) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-ch:
			if err := d.handler.Handle(evt); err != nil {
				// The engine already raised an operator notice; the
				// event stays unprocessed for platform redelivery.
				d.log.Error("Event processing failed",
					"chat", chat, "seq", evt.Seq(), "error", err)
			}
		}
	}
}
