package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"gatekeeper/domain"
)

// Notice is an operator-facing report. Notices are fanned out to sinks
// (log, mail) on a best-effort basis; they never influence verdicts.
type Notice interface {
	Summary() string
}

// AmbiguousTimeout reports a pending join resolved by fail-closed
// timeout instead of positive evidence. It may indicate gate-event
// delivery lag rather than actual spam, so operators should see it.
type AmbiguousTimeout struct {
	ID        uuid.UUID
	Protected domain.ChatID
	Gate      domain.ChatID
	User      domain.UserID
	Waited    time.Duration
}

func (n AmbiguousTimeout) Summary() string {
	return fmt.Sprintf("removed user %d from chat %d after %s without a membership event from gate %d",
		n.User, n.Protected, n.Waited.Round(time.Second), n.Gate)
}

// StorageFailure reports a persistence failure. The triggering event
// was left unprocessed and needs platform-level redelivery or manual
// remediation.
type StorageFailure struct {
	ID  uuid.UUID
	Op  string
	Err error
}

func (n StorageFailure) Summary() string {
	return fmt.Sprintf("storage failure during %s: %v", n.Op, n.Err)
}

// ActionFailure reports that the platform client could not complete a
// side effect. The verdict behind the action stands regardless.
type ActionFailure struct {
	ID     uuid.UUID
	Action string
	Err    error
}

func (n ActionFailure) Summary() string {
	return fmt.Sprintf("action %s failed: %v", n.Action, n.Err)
}
