package main

import (
	"context"
	"log/slog"
	"time"

	"gatekeeper/contract"
	"gatekeeper/domain"
)

var _ contract.ActionClient = (*logClient)(nil)

// logClient records requested side effects in the log instead of
// calling a messaging platform. It is the wiring point where a real
// platform client (with its own rate limiting and retry-after
// handling) plugs in.
type logClient struct {
	log *slog.Logger
}

func newLogClient(log *slog.Logger) *logClient {
	return &logClient{log: log}
}

func (c *logClient) DeleteMessage(_ context.Context, chat domain.ChatID, message domain.MessageID) error {
	c.log.Info("Would delete message", "chat", chat, "message", message)
	return nil
}

func (c *logClient) RemoveMember(_ context.Context, chat domain.ChatID, user domain.UserID, until time.Time) error {
	c.log.Info("Would remove member", "chat", chat, "user", user, "until", until)
	return nil
}

func (c *logClient) LeaveChat(_ context.Context, chat domain.ChatID) error {
	c.log.Info("Would leave chat", "chat", chat)
	return nil
}

func (c *logClient) SendMessage(_ context.Context, chat domain.ChatID, replyTo domain.MessageID, text string) error {
	c.log.Info("Would send message", "chat", chat, "reply_to", replyTo, "text", text)
	return nil
}
