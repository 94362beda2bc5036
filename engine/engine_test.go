package engine_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"gatekeeper/domain"
	"gatekeeper/domain/action"
	"gatekeeper/domain/event"
	"gatekeeper/engine"
	"gatekeeper/membership"
	"gatekeeper/observability"
	"gatekeeper/pairing"
	"gatekeeper/storage"
)

const (
	testGate      = domain.ChatID(100)
	testProtected = domain.ChatID(-200)
	testUser      = domain.UserID(7)
	testBot       = domain.UserID(999)
)

type rig struct {
	eng      *engine.Engine
	actions  chan action.Action
	notices  chan event.Notice
	registry *pairing.Registry
	tracker  *membership.Tracker
	store    storage.Store
}

func newRig(t *testing.T, grace time.Duration) *rig {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewDiskStore(db, log)
	registry := pairing.NewRegistry(store, log)
	tracker := membership.NewTracker(store, log)

	_, err = registry.RegisterPair(testGate, testProtected)
	require.NoError(t, err)

	r := &rig{
		actions:  make(chan action.Action, 16),
		notices:  make(chan event.Notice, 16),
		registry: registry,
		tracker:  tracker,
		store:    store,
	}
	r.eng = r.newEngine(log, grace)
	return r
}

// newEngine builds a fresh engine over the rig's shared state, the
// same way a restarted process would.
func (r *rig) newEngine(log *slog.Logger, grace time.Duration) *engine.Engine {
	return engine.NewEngine(log, r.registry, r.tracker, r.store,
		observability.NewMetrics(), r.actions, r.notices,
		grace, time.Minute, testBot)
}

func join(seq uint64, msg domain.MessageID) event.JoinedProtectedChat {
	return event.JoinedProtectedChat{
		Chat:        testProtected,
		User:        testUser,
		Actor:       testUser,
		MessageID:   msg,
		DeliverySeq: seq,
		At:          time.Now(),
	}
}

func gateEvent(seq uint64, present bool) event.MembershipChanged {
	return event.MembershipChanged{
		Chat:        testGate,
		User:        testUser,
		Present:     present,
		DeliverySeq: seq,
		At:          time.Now(),
	}
}

func nextAction(t *testing.T, ch chan action.Action) action.Action {
	t.Helper()
	select {
	case a := <-ch:
		return a
	case <-time.After(2 * time.Second):
		t.Fatal("expected an action, got none")
		return nil
	}
}

func noAction(t *testing.T, ch chan action.Action, wait time.Duration) {
	t.Helper()
	select {
	case a := <-ch:
		t.Fatalf("expected no action, got %s", a.Describe())
	case <-time.After(wait):
	}
}

func nextNotice(t *testing.T, ch chan event.Notice) event.Notice {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notice, got none")
		return nil
	}
}

func Test_Join_Allowed_When_Gate_Member(t *testing.T) {
	req := require.New(t)
	r := newRig(t, 30*time.Second)

	req.NoError(r.eng.Handle(gateEvent(1, true)))
	req.NoError(r.eng.Handle(join(2, 42)))

	// The join notice still goes away, the user stays.
	del, ok := nextAction(t, r.actions).(action.DeleteMessage)
	req.True(ok)
	req.Equal(domain.MessageID(42), del.Message)
	noAction(t, r.actions, 100*time.Millisecond)
}

func Test_Join_Removed_When_Not_Gate_Member(t *testing.T) {
	req := require.New(t)
	r := newRig(t, 30*time.Second)

	req.NoError(r.eng.Handle(gateEvent(1, false)))
	req.NoError(r.eng.Handle(join(2, 42)))

	_, ok := nextAction(t, r.actions).(action.DeleteMessage)
	req.True(ok)
	remove, ok := nextAction(t, r.actions).(action.RemoveMember)
	req.True(ok)
	req.Equal(testUser, remove.User)
	req.Equal(testProtected, remove.Chat)
	noAction(t, r.actions, 100*time.Millisecond)
}

func Test_Pending_Join_Resolved_By_Late_Gate_Event(t *testing.T) {
	req := require.New(t)
	r := newRig(t, 200*time.Millisecond)

	req.NoError(r.eng.Handle(join(1, 42)))
	noAction(t, r.actions, 50*time.Millisecond)

	req.NoError(r.eng.Handle(gateEvent(2, true)))
	_, ok := nextAction(t, r.actions).(action.DeleteMessage)
	req.True(ok)

	// The grace timer was cancelled: once it would have fired, no
	// removal appears.
	noAction(t, r.actions, 300*time.Millisecond)
}

func Test_Pending_Join_Times_Out_Fail_Closed(t *testing.T) {
	req := require.New(t)
	r := newRig(t, 80*time.Millisecond)

	req.NoError(r.eng.Handle(join(1, 43)))

	_, ok := nextAction(t, r.actions).(action.DeleteMessage)
	req.True(ok)
	remove, ok := nextAction(t, r.actions).(action.RemoveMember)
	req.True(ok)
	req.Equal(testUser, remove.User)

	timeout, ok := nextNotice(t, r.notices).(event.AmbiguousTimeout)
	req.True(ok)
	req.Equal(testProtected, timeout.Protected)
	req.Equal(testGate, timeout.Gate)
}

func Test_Duplicate_Join_After_Resolution_Is_Ignored(t *testing.T) {
	req := require.New(t)
	r := newRig(t, 30*time.Second)

	req.NoError(r.eng.Handle(gateEvent(1, true)))
	req.NoError(r.eng.Handle(join(2, 42)))
	_, ok := nextAction(t, r.actions).(action.DeleteMessage)
	req.True(ok)

	// Redelivered join with the same sequence produces nothing new.
	req.NoError(r.eng.Handle(join(2, 42)))
	noAction(t, r.actions, 100*time.Millisecond)
}

func Test_Pending_Join_Cancelled_When_User_Leaves(t *testing.T) {
	req := require.New(t)
	r := newRig(t, 150*time.Millisecond)

	req.NoError(r.eng.Handle(join(1, 42)))
	req.NoError(r.eng.Handle(event.LeftChat{
		Chat:        testProtected,
		User:        testUser,
		MessageID:   50,
		DeliverySeq: 2,
		At:          time.Now(),
	}))

	// Only the join notice goes; the user is already gone.
	_, ok := nextAction(t, r.actions).(action.DeleteMessage)
	req.True(ok)
	noAction(t, r.actions, 250*time.Millisecond)
}

func Test_Invited_User_Skips_The_Gate(t *testing.T) {
	req := require.New(t)
	r := newRig(t, 30*time.Second)

	evt := join(1, 42)
	evt.Actor = 12345 // an admin added the user
	req.NoError(r.eng.Handle(evt))
	noAction(t, r.actions, 100*time.Millisecond)
}

func Test_Bot_Join_Is_Ignored(t *testing.T) {
	req := require.New(t)
	r := newRig(t, 30*time.Second)

	evt := join(1, 42)
	evt.UserIsBot = true
	req.NoError(r.eng.Handle(evt))
	noAction(t, r.actions, 100*time.Millisecond)
}

func Test_Join_Without_Pair_Leaves_The_Chat(t *testing.T) {
	req := require.New(t)
	r := newRig(t, 30*time.Second)

	evt := join(1, 42)
	evt.Chat = domain.ChatID(-777)
	req.NoError(r.eng.Handle(evt))

	leave, ok := nextAction(t, r.actions).(action.LeaveChat)
	req.True(ok)
	req.Equal(domain.ChatID(-777), leave.Chat)
}

func Test_Bot_Removal_Drops_Pair_And_Prunes_Gate(t *testing.T) {
	req := require.New(t)
	r := newRig(t, 30*time.Second)

	req.NoError(r.eng.Handle(gateEvent(1, true)))
	req.NoError(r.eng.Handle(event.LeftChat{
		Chat:        testProtected,
		User:        testBot,
		DeliverySeq: 2,
		At:          time.Now(),
	}))

	_, ok := r.registry.LookupByProtected(testProtected)
	req.False(ok)
	req.Equal(domain.MembershipUnknown, r.tracker.IsMember(testGate, testUser))
}

func Test_Gate_Serving_Two_Chats_Resolves_Both_Pendings(t *testing.T) {
	req := require.New(t)
	r := newRig(t, 30*time.Second)

	second := domain.ChatID(-201)
	_, err := r.registry.RegisterPair(testGate, second)
	req.NoError(err)

	req.NoError(r.eng.Handle(join(1, 42)))
	evt := join(2, 43)
	evt.Chat = second
	req.NoError(r.eng.Handle(evt))

	req.NoError(r.eng.Handle(gateEvent(3, true)))

	first := nextAction(t, r.actions).(action.DeleteMessage)
	next := nextAction(t, r.actions).(action.DeleteMessage)
	req.ElementsMatch(
		[]domain.ChatID{testProtected, second},
		[]domain.ChatID{first.Chat, next.Chat},
	)
	noAction(t, r.actions, 100*time.Millisecond)
}
