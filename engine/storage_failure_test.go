package engine_test

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"gatekeeper/domain/action"
	"gatekeeper/domain/event"
	"gatekeeper/engine"
	errs "gatekeeper/errors"
	"gatekeeper/membership"
	"gatekeeper/mocks"
	"gatekeeper/observability"
	"gatekeeper/pairing"
	"gatekeeper/storage"
)

// brokenRig builds the engine over a mocked store so individual writes
// can be made to fail. The pair registration itself succeeds; every
// other expectation belongs to the test.
func brokenRig(t *testing.T) (*engine.Engine, *mocks.MockStore, chan event.Notice) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry := pairing.NewRegistry(store, log)
	store.EXPECT().Put(storage.PairKey(testProtected), gomock.Any()).Return(nil)
	_, err := registry.RegisterPair(testGate, testProtected)
	require.NoError(t, err)

	tracker := membership.NewTracker(store, log)
	notices := make(chan event.Notice, 16)
	eng := engine.NewEngine(log, registry, tracker, store,
		observability.NewMetrics(), make(chan action.Action, 16), notices,
		time.Minute, time.Minute, testBot)
	return eng, store, notices
}

func Test_Failed_Membership_Write_Surfaces_To_Operator_And_Caller(t *testing.T) {
	req := require.New(t)
	eng, store, notices := brokenRig(t)

	diskErr := fmt.Errorf("%w: disk gone", errs.ErrStorageUnavailable)
	store.EXPECT().
		Put(storage.MemberKey(testGate, testUser), gomock.Any()).
		Return(diskErr)

	err := eng.Handle(gateEvent(1, true))
	req.ErrorIs(err, errs.ErrStorageUnavailable)

	failure, ok := nextNotice(t, notices).(event.StorageFailure)
	req.True(ok, "expected a storage failure notice")
	req.Equal("membership apply", failure.Op)
	req.ErrorIs(failure.Err, errs.ErrStorageUnavailable)
}

func Test_Failed_Pending_Checkpoint_Keeps_The_Join_Redeliverable(t *testing.T) {
	req := require.New(t)
	eng, store, notices := brokenRig(t)

	diskErr := fmt.Errorf("%w: disk gone", errs.ErrStorageUnavailable)
	store.EXPECT().
		Put(storage.PendingKey(testProtected, testUser), gomock.Any()).
		Return(diskErr)

	err := eng.Handle(join(1, 42))
	req.ErrorIs(err, errs.ErrStorageUnavailable)

	failure, ok := nextNotice(t, notices).(event.StorageFailure)
	req.True(ok, "expected a storage failure notice")
	req.Equal("pending checkpoint", failure.Op)

	// Nothing was resolved, so the redelivered event must be accepted
	// once the store works again.
	store.EXPECT().
		Put(storage.PendingKey(testProtected, testUser), gomock.Any()).
		Return(nil)
	req.NoError(eng.Handle(join(1, 42)))
}
