// Package engine turns membership evidence into verdicts. It is the
// only component that mutates the registry, the tracker, and the set
// of pending joins.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"gatekeeper/contract"
	"gatekeeper/domain"
	"gatekeeper/domain/action"
	"gatekeeper/domain/event"
	errs "gatekeeper/errors"
	"gatekeeper/membership"
	"gatekeeper/observability"
	"gatekeeper/pairing"
	"gatekeeper/storage"
)

var _ contract.EventHandler = (*Engine)(nil)

type pendKey struct {
	Protected domain.ChatID
	User      domain.UserID
}

// pendingJoin is a join under review. resolved is flipped exactly once,
// under the engine lock, by whichever of the grace timer or a resolving
// membership event gets there first; the loser sees the flag and backs
// off, so a cancelled timer can never fire a late verdict.
type pendingJoin struct {
	domain.PendingJoin
	timer    *time.Timer
	resolved bool
}

type pendingRecord struct {
	Gate       int64     `cbor:"1,keyasint"`
	Message    int64     `cbor:"2,keyasint"`
	ObservedAt time.Time `cbor:"3,keyasint"`
	Seq        uint64    `cbor:"4,keyasint"`
}

// Engine evaluates join attempts against gate membership.
//
// The dispatcher serializes events per chat before they reach Handle,
// so no two events of the same chat are ever in flight concurrently.
// The internal lock exists for the paths that cross that boundary:
// grace timers firing and gate events resolving another chat's pending
// join.
type Engine struct {
	mu          sync.Mutex
	log         *slog.Logger
	registry    *pairing.Registry
	tracker     *membership.Tracker
	store       storage.Store
	metrics     *observability.Metrics
	actions     chan<- action.Action
	notices     chan<- event.Notice
	grace       time.Duration
	banWindow   time.Duration
	botID       domain.UserID
	pending     map[pendKey]*pendingJoin
	resolvedSeq map[pendKey]uint64
}

func NewEngine(
	log *slog.Logger,
	registry *pairing.Registry,
	tracker *membership.Tracker,
	store storage.Store,
	metrics *observability.Metrics,
	actions chan<- action.Action,
	notices chan<- event.Notice,
	grace, banWindow time.Duration,
	botID domain.UserID,
) *Engine {
	return &Engine{
		log:         log,
		registry:    registry,
		tracker:     tracker,
		store:       store,
		metrics:     metrics,
		actions:     actions,
		notices:     notices,
		grace:       grace,
		banWindow:   banWindow,
		botID:       botID,
		pending:     make(map[pendKey]*pendingJoin),
		resolvedSeq: make(map[pendKey]uint64),
	}
}

// Handle applies one inbound event. A returned error means the event
// was not processed and must be redelivered; filtering outcomes (stale
// or irrelevant events) are absorbed here and are not errors.
func (e *Engine) Handle(evt event.Event) error {
	e.metrics.IncrEventsSeen()
	switch typed := evt.(type) {
	case event.JoinedProtectedChat:
		return e.handleJoin(typed)
	case event.MembershipChanged:
		return e.handleMembership(typed)
	case event.LeftChat:
		return e.handleLeft(typed)
	default:
		e.log.Debug("Unhandled event type", "chat", evt.ChatID(), "seq", evt.Seq())
		return nil
	}
}

func (e *Engine) handleJoin(evt event.JoinedProtectedChat) error {
	if evt.UserIsBot {
		e.log.Debug("Bot account joined, ignoring", "chat", evt.Chat, "user", evt.User)
		return nil
	}

	pair, ok := e.registry.LookupByProtected(evt.Chat)
	if !ok {
		// The pair vanished between dispatch and handling. Nothing to
		// guard here anymore, so stop lingering in the chat.
		e.log.Info("No pair for chat, leaving it", "chat", evt.Chat)
		e.emit(action.LeaveChat{Chat: evt.Chat})
		return nil
	}

	if evt.Actor != 0 && evt.Actor != evt.User {
		// An admin added the user by hand; that vouches for them.
		e.log.Info("User added by another member, allowing",
			"chat", evt.Chat, "user", evt.User, "actor", evt.Actor)
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	key := pendKey{Protected: evt.Chat, User: evt.User}
	if seq, ok := e.resolvedSeq[key]; ok && evt.DeliverySeq <= seq {
		e.metrics.IncrStaleEvents()
		e.log.Debug("Replayed join discarded", "reason", errs.ErrStaleEvent,
			"chat", evt.Chat, "user", evt.User, "seq", evt.DeliverySeq)
		return nil
	}
	if _, ok := e.pending[key]; ok {
		e.log.Debug("Join already pending", "chat", evt.Chat, "user", evt.User)
		return nil
	}

	switch e.tracker.IsMember(pair.Gate, evt.User) {
	case domain.MembershipPresent:
		e.resolveLocked(key, evt.DeliverySeq)
		e.emit(action.DeleteMessage{Chat: evt.Chat, Message: evt.MessageID})
		e.metrics.IncrAllowed()
		e.log.Info("Join decided", "verdict", domain.VerdictAllowed,
			"chat", evt.Chat, "user", evt.User)
		return nil

	case domain.MembershipAbsent:
		e.resolveLocked(key, evt.DeliverySeq)
		e.removeUser(evt.Chat, evt.User, evt.MessageID)
		e.log.Info("Join decided, user not in gate", "verdict", domain.VerdictRemoved,
			"chat", evt.Chat, "gate", pair.Gate, "user", evt.User)
		return nil

	default:
		return e.armPendingLocked(domain.PendingJoin{
			Protected:     evt.Chat,
			Gate:          pair.Gate,
			User:          evt.User,
			JoinMessageID: evt.MessageID,
			ObservedAt:    evt.At,
		}, evt.DeliverySeq, e.grace)
	}
}

// armPendingLocked checkpoints a join under review and starts its grace
// timer. A checkpoint that cannot be written is fatal for the event:
// without it a crash would silently drop the decision.
func (e *Engine) armPendingLocked(pj domain.PendingJoin, seq uint64, wait time.Duration) error {
	value, err := cbor.Marshal(pendingRecord{
		Gate:       int64(pj.Gate),
		Message:    int64(pj.JoinMessageID),
		ObservedAt: pj.ObservedAt,
		Seq:        seq,
	})
	if err != nil {
		return err
	}
	if err := e.store.Put(storage.PendingKey(pj.Protected, pj.User), value); err != nil {
		e.notify(event.StorageFailure{ID: uuid.New(), Op: "pending checkpoint", Err: err})
		return err
	}

	key := pendKey{Protected: pj.Protected, User: pj.User}
	p := &pendingJoin{PendingJoin: pj}
	p.timer = time.AfterFunc(wait, func() { e.expire(key, seq) })
	e.pending[key] = p
	e.log.Info("Join pending, gate membership unknown",
		"chat", pj.Protected, "gate", pj.Gate, "user", pj.User, "wait", wait)
	return nil
}

// expire fires when the grace period elapsed without evidence. Fail
// closed: no membership event means no admission.
func (e *Engine) expire(key pendKey, seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.pending[key]
	if !ok || p.resolved {
		return
	}
	p.resolved = true
	e.resolveLocked(key, seq)

	waited := time.Since(p.ObservedAt)
	e.removeUser(p.Protected, p.User, p.JoinMessageID)
	e.metrics.IncrTimeouts()
	e.notify(event.AmbiguousTimeout{
		ID:        uuid.New(),
		Protected: p.Protected,
		Gate:      p.Gate,
		User:      p.User,
		Waited:    waited,
	})
	e.log.Warn("Pending join timed out", "verdict", domain.VerdictRemoved,
		"chat", p.Protected, "gate", p.Gate, "user", p.User, "waited", waited)
}

func (e *Engine) handleMembership(evt event.MembershipChanged) error {
	applied, err := e.tracker.Apply(evt.Chat, evt.User, evt.DeliverySeq, evt.Present)
	if err != nil {
		e.notify(event.StorageFailure{ID: uuid.New(), Op: "membership apply", Err: err})
		return err
	}
	if !applied {
		e.metrics.IncrStaleEvents()
		e.log.Debug("Stale membership event discarded", "reason", errs.ErrStaleEvent,
			"gate", evt.Chat, "user", evt.User, "seq", evt.DeliverySeq)
		return nil
	}

	// The gate may guard several protected chats; settle every pending
	// join of this user that was waiting on it.
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, pair := range e.registry.PairsForChat(evt.Chat) {
		if pair.Gate != evt.Chat {
			continue
		}
		key := pendKey{Protected: pair.Protected, User: evt.User}
		p, ok := e.pending[key]
		if !ok || p.resolved {
			continue
		}
		p.resolved = true
		p.timer.Stop()
		e.resolveLocked(key, evt.DeliverySeq)

		if evt.Present {
			e.emit(action.DeleteMessage{Chat: p.Protected, Message: p.JoinMessageID})
			e.metrics.IncrAllowed()
			e.log.Info("Pending join decided by gate event",
				"verdict", domain.VerdictAllowed, "chat", p.Protected, "user", p.User)
		} else {
			e.removeUser(p.Protected, p.User, p.JoinMessageID)
			e.log.Info("Pending join decided by gate event",
				"verdict", domain.VerdictRemoved, "chat", p.Protected, "user", p.User)
		}
	}
	return nil
}

func (e *Engine) handleLeft(evt event.LeftChat) error {
	if evt.User == e.botID {
		return e.handleBotRemoved(evt.Chat)
	}

	if evt.Remover == e.botID {
		// Our own removal produced a service message; clean it up too.
		e.emit(action.DeleteMessage{Chat: evt.Chat, Message: evt.MessageID})
		return nil
	}

	// A pending user who left on their own needs no verdict anymore.
	e.mu.Lock()
	defer e.mu.Unlock()
	key := pendKey{Protected: evt.Chat, User: evt.User}
	if p, ok := e.pending[key]; ok && !p.resolved {
		p.resolved = true
		p.timer.Stop()
		e.resolveLocked(key, evt.DeliverySeq)
		e.emit(action.DeleteMessage{Chat: p.Protected, Message: p.JoinMessageID})
		e.log.Info("Pending join cancelled, user left", "chat", evt.Chat, "user", evt.User)
	}
	return nil
}

// handleBotRemoved drops the pair of a protected chat the bot was
// kicked from, and prunes the gate's records once no other pair uses
// that gate.
func (e *Engine) handleBotRemoved(chat domain.ChatID) error {
	pair, ok := e.registry.LookupByProtected(chat)
	if !ok {
		return nil
	}
	e.log.Info("Removed from protected chat, dropping pair",
		"protected", chat, "gate", pair.Gate)
	if err := e.registry.Unregister(chat); err != nil {
		e.notify(event.StorageFailure{ID: uuid.New(), Op: "pair unregister", Err: err})
		return err
	}

	e.mu.Lock()
	for key, p := range e.pending {
		if key.Protected != chat || p.resolved {
			continue
		}
		p.resolved = true
		p.timer.Stop()
		// The pair is gone; the max sequence keeps later replays out.
		e.resolveLocked(key, ^uint64(0))
	}
	e.mu.Unlock()

	if len(e.registry.PairsForChat(pair.Gate)) == 0 {
		if err := e.tracker.PruneGate(pair.Gate); err != nil {
			e.notify(event.StorageFailure{ID: uuid.New(), Op: "gate prune", Err: err})
			return err
		}
	}
	return nil
}

// Recover re-evaluates every checkpointed pending join after a restart.
// Joins whose membership became known resolve immediately; the rest get
// only the remainder of their original grace so recovery latency stays
// bounded. An already-expired wait fails closed on the spot.
func (e *Engine) Recover() error {
	type recovered struct {
		key pendKey
		rec pendingRecord
	}
	var pendings []recovered
	err := e.store.ScanPrefix(storage.PendingPrefix, func(key string, value []byte) error {
		protected, user, err := storage.SplitKey(key, storage.PendingPrefix)
		if err != nil {
			return err
		}
		var rec pendingRecord
		if err := cbor.Unmarshal(value, &rec); err != nil {
			return err
		}
		pendings = append(pendings, recovered{
			key: pendKey{Protected: domain.ChatID(protected), User: domain.UserID(user)},
			rec: rec,
		})
		return nil
	})
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range pendings {
		e.metrics.IncrPendingRecovers()
		pj := domain.PendingJoin{
			Protected:     r.key.Protected,
			Gate:          domain.ChatID(r.rec.Gate),
			User:          r.key.User,
			JoinMessageID: domain.MessageID(r.rec.Message),
			ObservedAt:    r.rec.ObservedAt,
		}

		switch e.tracker.IsMember(pj.Gate, pj.User) {
		case domain.MembershipPresent:
			e.resolveLocked(r.key, r.rec.Seq)
			e.emit(action.DeleteMessage{Chat: pj.Protected, Message: pj.JoinMessageID})
			e.metrics.IncrAllowed()
			e.log.Info("Recovered pending join decided",
				"verdict", domain.VerdictAllowed, "chat", pj.Protected, "user", pj.User)

		case domain.MembershipAbsent:
			e.resolveLocked(r.key, r.rec.Seq)
			e.removeUser(pj.Protected, pj.User, pj.JoinMessageID)
			e.log.Info("Recovered pending join decided",
				"verdict", domain.VerdictRemoved, "chat", pj.Protected, "user", pj.User)

		default:
			remaining := e.grace - time.Since(pj.ObservedAt)
			if remaining <= 0 {
				e.resolveLocked(r.key, r.rec.Seq)
				e.removeUser(pj.Protected, pj.User, pj.JoinMessageID)
				e.metrics.IncrTimeouts()
				e.notify(event.AmbiguousTimeout{
					ID:        uuid.New(),
					Protected: pj.Protected,
					Gate:      pj.Gate,
					User:      pj.User,
					Waited:    time.Since(pj.ObservedAt),
				})
				e.log.Warn("Recovered pending join already expired",
					"verdict", domain.VerdictRemoved, "chat", pj.Protected, "user", pj.User)
				continue
			}
			if err := e.armPendingLocked(pj, r.rec.Seq, remaining); err != nil {
				return err
			}
		}
	}
	if len(pendings) > 0 {
		e.log.Info("Pending joins recovered", "count", len(pendings))
	}
	return nil
}

// resolveLocked finalizes a (protected, user) decision: the pending
// entry and its checkpoint go away, and the sequence number is kept so
// a replayed join event for the same attempt is ignored.
func (e *Engine) resolveLocked(key pendKey, seq uint64) {
	delete(e.pending, key)
	e.resolvedSeq[key] = seq
	if err := e.store.Delete(storage.PendingKey(key.Protected, key.User)); err != nil {
		// The verdict already happened; a leaked checkpoint only costs
		// one redundant re-evaluation at next startup.
		e.log.Error("Failed to clear pending checkpoint",
			"chat", key.Protected, "user", key.User, "error", err)
	}
}

func (e *Engine) removeUser(chat domain.ChatID, user domain.UserID, msg domain.MessageID) {
	e.emit(action.DeleteMessage{Chat: chat, Message: msg})
	e.emit(action.RemoveMember{Chat: chat, User: user, Until: time.Now().Add(e.banWindow)})
	e.metrics.IncrRemoved()
}

// emit hands a side effect to the action queue without blocking the
// verdict path. A full queue means the platform client is far behind;
// dropping and counting is preferable to stalling every chat.
func (e *Engine) emit(a action.Action) {
	select {
	case e.actions <- a:
	default:
		e.metrics.IncrActionsDropped()
		e.log.Warn(fmt.Sprintf("Action queue full, dropping: %s", a.Describe()))
	}
}

func (e *Engine) notify(n event.Notice) {
	select {
	case e.notices <- n:
	default:
		e.log.Warn("Notice channel full, dropping", "summary", n.Summary())
	}
}
