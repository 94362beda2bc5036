// Package domain contains core concepts of the gate system.
// No runtime, network, or storage logic should be added here.
package domain

import "time"

// ChatID is the platform identifier of a chat. Group identifiers
// may be negative on some platforms, so the type is signed.
type ChatID int64

// UserID is the platform identifier of a user account.
type UserID int64

// MessageID identifies a message inside a single chat.
type MessageID int64

// ChatKind is the platform classification of a chat.
type ChatKind string

const (
	KindPrivate    ChatKind = "private"
	KindGroup      ChatKind = "group"
	KindSupergroup ChatKind = "supergroup"
	KindChannel    ChatKind = "channel"
)

// IsGroup reports whether the kind is a multi-user discussion chat.
func (k ChatKind) IsGroup() bool {
	return k == KindGroup || k == KindSupergroup
}

// ChatInfo is the resolved identity of a chat reference.
type ChatInfo struct {
	ID    ChatID
	Title string
	Kind  ChatKind
}

// Pair binds a protected discussion chat to the gate chat a user
// must belong to before joining it.
type Pair struct {
	Gate      ChatID
	Protected ChatID
}

// MembershipState is the tri-state answer to "is this user in the gate?".
// Unknown means no membership event has been observed yet for the user;
// it must never be collapsed to Absent (legitimate members whose gate
// event is still in flight would be kicked) nor to Present (the gate
// would be wide open).
type MembershipState int

const (
	MembershipUnknown MembershipState = iota
	MembershipPresent
	MembershipAbsent
)

func (s MembershipState) String() string {
	switch s {
	case MembershipPresent:
		return "present"
	case MembershipAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// MembershipRecord is the persisted fact for one (gate, user) pair.
// LastEventSeq guards against duplicate and out-of-order delivery:
// only events with a strictly newer sequence number are applied.
type MembershipRecord struct {
	Present      bool
	LastEventSeq uint64
}

// Verdict is the engine's decision on a join attempt.
type Verdict int

const (
	VerdictAllowed Verdict = iota
	VerdictRemoved
)

func (v Verdict) String() string {
	if v == VerdictAllowed {
		return "allowed"
	}
	return "removed"
}

// PendingJoin tracks a join whose gate membership is not yet known.
// It is owned exclusively by the engine serving the protected chat.
type PendingJoin struct {
	Protected     ChatID
	Gate          ChatID
	User          UserID
	JoinMessageID MessageID
	ObservedAt    time.Time
}
