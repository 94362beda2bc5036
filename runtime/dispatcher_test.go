package runtime

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"gatekeeper/domain"
	"gatekeeper/domain/event"
	"gatekeeper/observability"
	"gatekeeper/pairing"
	"gatekeeper/storage"
)

// orderRecorder records, per chat, the sequence numbers in handling
// order, with a small delay to surface interleaving bugs.
type orderRecorder struct {
	mu   sync.Mutex
	seen map[domain.ChatID][]uint64
}

func (h *orderRecorder) Handle(evt event.Event) error {
	time.Sleep(time.Millisecond)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen[evt.ChatID()] = append(h.seen[evt.ChatID()], evt.Seq())
	return nil
}

func newTestRegistry(t *testing.T) *pairing.Registry {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return pairing.NewRegistry(storage.NewDiskStore(db, log), log)
}

func Test_Per_Chat_Ordering_Across_Concurrent_Chats(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(t)
	chats := []domain.ChatID{-200, -201, -202}
	for i, chat := range chats {
		_, err := registry.RegisterPair(domain.ChatID(100+i), chat)
		req.NoError(err)
	}

	recorder := &orderRecorder{seen: make(map[domain.ChatID][]uint64)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	dispatcher := NewDispatcher(log, registry, recorder, observability.NewMetrics(), 64, 16)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = dispatcher.Run(ctx)
		close(done)
	}()

	const perChat = 20
	seq := uint64(0)
	for i := 0; i < perChat; i++ {
		for _, chat := range chats {
			seq++
			dispatcher.Submit(event.JoinedProtectedChat{
				Chat: chat, User: 7, Actor: 7, DeliverySeq: seq, At: time.Now(),
			})
		}
	}

	req.Eventually(func() bool {
		recorder.mu.Lock()
		defer recorder.mu.Unlock()
		total := 0
		for _, seqs := range recorder.seen {
			total += len(seqs)
		}
		return total == perChat*len(chats)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	for _, chat := range chats {
		seqs := recorder.seen[chat]
		req.Len(seqs, perChat)
		for i := 1; i < len(seqs); i++ {
			req.Greater(seqs[i], seqs[i-1], "chat %d processed out of order", chat)
		}
	}
}

func Test_Unpaired_Chat_Events_Are_Dropped(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(t)
	_, err := registry.RegisterPair(100, -200)
	req.NoError(err)

	recorder := &orderRecorder{seen: make(map[domain.ChatID][]uint64)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics()
	dispatcher := NewDispatcher(log, registry, recorder, metrics, 8, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = dispatcher.Run(ctx)
		close(done)
	}()

	dispatcher.Submit(event.JoinedProtectedChat{Chat: -999, User: 7, DeliverySeq: 1})
	dispatcher.Submit(event.JoinedProtectedChat{Chat: -200, User: 7, Actor: 7, DeliverySeq: 2})

	req.Eventually(func() bool {
		recorder.mu.Lock()
		defer recorder.mu.Unlock()
		return len(recorder.seen[-200]) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	req.Empty(recorder.seen[-999])
	req.Equal(uint64(1), metrics.Snapshot().UnknownChats)
}

// Gate chats are routed too: a membership event for a gate that backs
// a pair must reach the handler even though the gate is not protected.
func Test_Gate_Chat_Events_Are_Relevant(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(t)
	_, err := registry.RegisterPair(100, -200)
	req.NoError(err)

	recorder := &orderRecorder{seen: make(map[domain.ChatID][]uint64)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	dispatcher := NewDispatcher(log, registry, recorder, observability.NewMetrics(), 8, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = dispatcher.Run(ctx)
		close(done)
	}()

	dispatcher.Submit(event.MembershipChanged{Chat: 100, User: 7, Present: true, DeliverySeq: 1})

	req.Eventually(func() bool {
		recorder.mu.Lock()
		defer recorder.mu.Unlock()
		return len(recorder.seen[100]) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
