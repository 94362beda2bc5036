// Package action defines the side effects the engine requests from the
// platform client. Actions are descriptions, not calls: the engine
// hands them to a queue and moves on. Retry and rate limiting belong
// to the client.
package action

import (
	"fmt"
	"time"

	"gatekeeper/domain"
)

type Action interface {
	Describe() string
}

// DeleteMessage removes a message, typically the system join notice.
type DeleteMessage struct {
	Chat    domain.ChatID
	Message domain.MessageID
}

func (a DeleteMessage) Describe() string {
	return fmt.Sprintf("delete message %d in chat %d", a.Message, a.Chat)
}

// RemoveMember kicks a user out of a chat. Until bounds the ban so a
// legitimate user can come back after joining the gate first.
type RemoveMember struct {
	Chat  domain.ChatID
	User  domain.UserID
	Until time.Time
}

func (a RemoveMember) Describe() string {
	return fmt.Sprintf("remove user %d from chat %d", a.User, a.Chat)
}

// LeaveChat makes the bot leave a chat it has no pair for.
type LeaveChat struct {
	Chat domain.ChatID
}

func (a LeaveChat) Describe() string {
	return fmt.Sprintf("leave chat %d", a.Chat)
}

// SendReply answers an administrator command.
type SendReply struct {
	Chat    domain.ChatID
	ReplyTo domain.MessageID
	Text    string
}

func (a SendReply) Describe() string {
	return fmt.Sprintf("reply in chat %d", a.Chat)
}
