//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"gatekeeper/domain"
	"gatekeeper/domain/event"
)

type WorkerName string

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes, avoiding the need
// for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventHandler consumes one inbound event. A returned error means the
// event was not processed and needs redelivery.
type EventHandler interface {
	Handle(evt event.Event) error
}

// ActionClient performs side effects against the messaging platform.
// Implementations own rate limiting, retry-after handling, and retries
// for transient failures; callers never retry through this interface.
type ActionClient interface {
	DeleteMessage(ctx context.Context, chat domain.ChatID, message domain.MessageID) error
	RemoveMember(ctx context.Context, chat domain.ChatID, user domain.UserID, until time.Time) error
	LeaveChat(ctx context.Context, chat domain.ChatID) error
	SendMessage(ctx context.Context, chat domain.ChatID, replyTo domain.MessageID, text string) error
}

// NoticeSink receives operator notices. Consume must not block the
// caller for long; slow delivery belongs inside the sink.
type NoticeSink interface {
	Consume(n event.Notice)
}

// ChatInspector answers questions about chats during pair registration.
type ChatInspector interface {
	ResolveChat(ctx context.Context, ref string) (domain.ChatInfo, error)
	Administrators(ctx context.Context, chat domain.ChatID) ([]domain.UserID, error)
	CanSeeMembers(ctx context.Context, chat domain.ChatID) (bool, error)
}
