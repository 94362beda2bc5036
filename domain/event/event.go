// Package event defines the inbound platform events the core consumes.
// The transport layer (polling or webhook) translates raw platform
// updates into these types; the core never sees the wire format.
package event

import (
	"time"

	"gatekeeper/domain"
)

// Event is an inbound platform event. DeliverySeq is assigned by the
// transport from the platform's update sequence and is strictly
// increasing across the whole stream, which makes it usable as a
// per-(gate, user) staleness guard.
type Event interface {
	ChatID() domain.ChatID
	Seq() uint64
}

// JoinedProtectedChat signals that a user appeared in a protected chat.
// Actor is the account that performed the join; it differs from User
// when an administrator added the user by hand.
type JoinedProtectedChat struct {
	Chat        domain.ChatID
	User        domain.UserID
	Actor       domain.UserID
	UserIsBot   bool
	MessageID   domain.MessageID
	DeliverySeq uint64
	At          time.Time
}

func (e JoinedProtectedChat) ChatID() domain.ChatID { return e.Chat }
func (e JoinedProtectedChat) Seq() uint64           { return e.DeliverySeq }

// MembershipChanged signals that a user's membership in a gate chat
// changed. Delivery is at-least-once and may be out of order.
type MembershipChanged struct {
	Chat        domain.ChatID
	User        domain.UserID
	Present     bool
	DeliverySeq uint64
	At          time.Time
}

func (e MembershipChanged) ChatID() domain.ChatID { return e.Chat }
func (e MembershipChanged) Seq() uint64           { return e.DeliverySeq }

// LeftChat signals that a user left, or was removed from, a chat.
// Remover is the account that removed the user, or zero when the user
// left on their own. MessageID is the service message announcing the
// departure.
type LeftChat struct {
	Chat        domain.ChatID
	User        domain.UserID
	Remover     domain.UserID
	MessageID   domain.MessageID
	DeliverySeq uint64
	At          time.Time
}

func (e LeftChat) ChatID() domain.ChatID { return e.Chat }
func (e LeftChat) Seq() uint64           { return e.DeliverySeq }
