// Package command parses administrator commands and applies them to
// the pairing registry. Replies go out as actions, like every other
// side effect.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"gatekeeper/contract"
	"gatekeeper/domain"
	"gatekeeper/domain/action"
	"gatekeeper/membership"
	"gatekeeper/pairing"
)

const NewPairUsage = `Usage: /newpair @front @group

Users entering @group must be in @front, or get kicked.
You must be an admin of @group and add me as an admin in it.
`

const DelPairUsage = `Usage: /delpair @group

Removes the gate requirement of @group.
You must be an admin of @group.
`

// Command is one administrator message, already stripped of platform
// framing by the transport.
type Command struct {
	Issuer  domain.UserID
	Chat    domain.ChatInfo
	Message domain.MessageID
	Text    string
}

type Handler struct {
	registry  *pairing.Registry
	tracker   *membership.Tracker
	inspector contract.ChatInspector
	actions   chan<- action.Action
	botID     domain.UserID
	log       *slog.Logger
}

func NewHandler(
	registry *pairing.Registry,
	tracker *membership.Tracker,
	inspector contract.ChatInspector,
	actions chan<- action.Action,
	botID domain.UserID,
	log *slog.Logger,
) *Handler {
	return &Handler{
		registry:  registry,
		tracker:   tracker,
		inspector: inspector,
		actions:   actions,
		botID:     botID,
		log:       log,
	}
}

// Handle processes one command message. Commands posted inside a group
// are deleted without a reply so the pairing setup never leaks into
// the group itself.
func (h *Handler) Handle(ctx context.Context, cmd Command) {
	h.log.Debug("Command received", "text", cmd.Text, "issuer", cmd.Issuer)

	if cmd.Chat.Kind.IsGroup() {
		h.emit(action.DeleteMessage{Chat: cmd.Chat.ID, Message: cmd.Message})
		return
	}

	var reply string
	switch fields := strings.Fields(cmd.Text); {
	case len(fields) > 0 && fields[0] == "/newpair":
		reply = h.newPair(ctx, cmd, fields)
	case len(fields) > 0 && fields[0] == "/delpair":
		reply = h.delPair(ctx, cmd, fields)
	default:
		return
	}
	h.emit(action.SendReply{Chat: cmd.Chat.ID, ReplyTo: cmd.Message, Text: reply})
}

func (h *Handler) newPair(ctx context.Context, cmd Command, fields []string) string {
	if len(fields) != 3 {
		return NewPairUsage
	}
	frontRef, groupRef := fields[1], fields[2]

	front, err := h.inspector.ResolveChat(ctx, frontRef)
	if err != nil {
		return fmt.Sprintf("Error: the chat %s does not exist or is unavailable to me.", frontRef)
	}
	group, err := h.inspector.ResolveChat(ctx, groupRef)
	if err != nil {
		return fmt.Sprintf("Error: the chat %s does not exist or is unavailable to me.", groupRef)
	}

	admins, err := h.inspector.Administrators(ctx, group.ID)
	if err != nil {
		return fmt.Sprintf("Error: I cannot list the admins of %s.", groupRef)
	}
	if !lo.Contains(admins, cmd.Issuer) {
		return fmt.Sprintf("Error: you are not an admin of %s.", groupRef)
	}
	if !lo.Contains(admins, h.botID) {
		return fmt.Sprintf("Error: I'm not an admin of %s.", groupRef)
	}

	if front.Kind == domain.KindChannel {
		visible, err := h.inspector.CanSeeMembers(ctx, front.ID)
		if err != nil || !visible {
			return fmt.Sprintf("Error: I'm not an admin of channel %s but I need to be in order to see its members.", frontRef)
		}
	}

	previous, err := h.registry.RegisterPair(front.ID, group.ID)
	if err != nil {
		h.log.Error("Pair registration failed", "error", err)
		return "Error: I could not save the pair, please try again."
	}
	if previous != nil && previous.Gate != front.ID {
		return fmt.Sprintf("Success! Replaced the previous gate of %s.", groupRef)
	}
	return "Success!"
}

func (h *Handler) delPair(ctx context.Context, cmd Command, fields []string) string {
	if len(fields) != 2 {
		return DelPairUsage
	}
	groupRef := fields[1]

	group, err := h.inspector.ResolveChat(ctx, groupRef)
	if err != nil {
		return fmt.Sprintf("Error: the chat %s does not exist or is unavailable to me.", groupRef)
	}

	admins, err := h.inspector.Administrators(ctx, group.ID)
	if err != nil {
		return fmt.Sprintf("Error: I cannot list the admins of %s.", groupRef)
	}
	if !lo.Contains(admins, cmd.Issuer) {
		return fmt.Sprintf("Error: you are not an admin of %s.", groupRef)
	}

	pair, ok := h.registry.LookupByProtected(group.ID)
	if !ok {
		return fmt.Sprintf("Error: %s has no gate.", groupRef)
	}
	if err := h.registry.Unregister(group.ID); err != nil {
		h.log.Error("Pair removal failed", "error", err)
		return "Error: I could not remove the pair, please try again."
	}
	if len(h.registry.PairsForChat(pair.Gate)) == 0 {
		if err := h.tracker.PruneGate(pair.Gate); err != nil {
			h.log.Error("Gate prune failed", "gate", pair.Gate, "error", err)
		}
	}
	return "Success!"
}

func (h *Handler) emit(a action.Action) {
	select {
	case h.actions <- a:
	default:
		h.log.Warn("Action queue full, dropping reply")
	}
}
