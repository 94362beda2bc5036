package engine_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gatekeeper/domain/action"
	"gatekeeper/domain/event"
	"gatekeeper/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Test_Recover_Resolves_Checkpoint_With_Known_Membership(t *testing.T) {
	req := require.New(t)
	r := newRig(t, 30*time.Second)

	// A join goes pending, then the process "crashes" before the gate
	// event arrives.
	req.NoError(r.eng.Handle(join(1, 42)))
	_, ok, err := r.store.Get(storage.PendingKey(testProtected, testUser))
	req.NoError(err)
	req.True(ok)

	// The gate event lands while we were down (applied straight to the
	// tracker, as startup reload would).
	_, err = r.tracker.Apply(testGate, testUser, 2, true)
	req.NoError(err)

	restarted := r.newEngine(discard(), 30*time.Second)
	req.NoError(restarted.Recover())

	del, ok := nextAction(t, r.actions).(action.DeleteMessage)
	req.True(ok)
	req.Equal(testProtected, del.Chat)
	noAction(t, r.actions, 100*time.Millisecond)

	// The checkpoint is gone; another restart finds nothing to do.
	again := r.newEngine(discard(), 30*time.Second)
	req.NoError(again.Recover())
	noAction(t, r.actions, 100*time.Millisecond)
}

func Test_Recover_Expired_Checkpoint_Fails_Closed(t *testing.T) {
	req := require.New(t)
	r := newRig(t, 30*time.Second)

	// The join was observed long before the crash; its full grace
	// elapsed while the process was down.
	evt := join(1, 43)
	evt.At = time.Now().Add(-time.Hour)
	req.NoError(r.eng.Handle(evt))

	restarted := r.newEngine(discard(), 30*time.Second)
	req.NoError(restarted.Recover())

	_, ok := nextAction(t, r.actions).(action.DeleteMessage)
	req.True(ok)
	remove, ok := nextAction(t, r.actions).(action.RemoveMember)
	req.True(ok)
	req.Equal(testUser, remove.User)

	_, ok = nextNotice(t, r.notices).(event.AmbiguousTimeout)
	req.True(ok)
}

func Test_Recover_Rearms_Only_The_Remaining_Grace(t *testing.T) {
	req := require.New(t)
	r := newRig(t, 10*time.Second)

	// Observed 9.9s ago with a 10s grace: the restarted engine should
	// fail closed within the remaining ~100ms, not in another 10s.
	evt := join(1, 44)
	evt.At = time.Now().Add(-9900 * time.Millisecond)
	req.NoError(r.eng.Handle(evt))

	restarted := r.newEngine(discard(), 10*time.Second)
	req.NoError(restarted.Recover())

	start := time.Now()
	_, ok := nextAction(t, r.actions).(action.DeleteMessage)
	req.True(ok)
	_, ok = nextAction(t, r.actions).(action.RemoveMember)
	req.True(ok)
	req.Less(time.Since(start), 2*time.Second)
}
