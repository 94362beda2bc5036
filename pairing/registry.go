// Package pairing holds the authoritative table of (gate, protected)
// relationships. The table is a cache over the store; mutations persist
// before they become visible in memory.
package pairing

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"gatekeeper/domain"
	"gatekeeper/storage"
)

type pairRecord struct {
	Gate int64 `cbor:"1,keyasint"`
}

// Registry maps each protected chat to its single current gate.
// A gate may serve several protected chats; a protected chat has
// exactly one gate, and re-registering replaces the previous one.
// Mutations are administrator-driven and rare, so one lock is enough.
type Registry struct {
	mu          sync.RWMutex
	store       storage.Store
	log         *slog.Logger
	byProtected map[domain.ChatID]domain.ChatID
}

func NewRegistry(store storage.Store, log *slog.Logger) *Registry {
	return &Registry{
		store:       store,
		log:         log,
		byProtected: make(map[domain.ChatID]domain.ChatID),
	}
}

// Load rebuilds the in-memory table from the store. Called once at
// startup before any event is processed.
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byProtected = make(map[domain.ChatID]domain.ChatID)
	err := r.store.ScanPrefix(storage.PairPrefix, func(key string, value []byte) error {
		protected, err := strconv.ParseInt(strings.TrimPrefix(key, storage.PairPrefix), 10, 64)
		if err != nil {
			return err
		}
		var rec pairRecord
		if err := cbor.Unmarshal(value, &rec); err != nil {
			return err
		}
		r.byProtected[domain.ChatID(protected)] = domain.ChatID(rec.Gate)
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Info("Pairing table loaded", "pairs", len(r.byProtected))
	return nil
}

// RegisterPair binds protected to gate, replacing any existing pair for
// that protected chat. The previous pair, if any, is returned for the
// caller's reply. The write is durable before the cache changes.
func (r *Registry) RegisterPair(gate, protected domain.ChatID) (*domain.Pair, error) {
	value, err := cbor.Marshal(pairRecord{Gate: int64(gate)})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Put(storage.PairKey(protected), value); err != nil {
		return nil, err
	}

	var previous *domain.Pair
	if prevGate, ok := r.byProtected[protected]; ok {
		previous = &domain.Pair{Gate: prevGate, Protected: protected}
	}
	r.byProtected[protected] = gate
	r.log.Info("Pair registered", "gate", gate, "protected", protected)
	return previous, nil
}

// Unregister removes the pair for a protected chat. Removing a pair
// that does not exist is not an error.
func (r *Registry) Unregister(protected domain.ChatID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Delete(storage.PairKey(protected)); err != nil {
		return err
	}
	delete(r.byProtected, protected)
	r.log.Info("Pair unregistered", "protected", protected)
	return nil
}

func (r *Registry) LookupByProtected(protected domain.ChatID) (domain.Pair, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gate, ok := r.byProtected[protected]
	if !ok {
		return domain.Pair{}, false
	}
	return domain.Pair{Gate: gate, Protected: protected}, true
}

// PairsForChat returns every pair the chat takes part in, in either
// role. The dispatcher uses it as a cheap relevance filter: an event
// for a chat with no pairs never reaches the engine.
func (r *Registry) PairsForChat(chat domain.ChatID) []domain.Pair {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pairs []domain.Pair
	for protected, gate := range r.byProtected {
		if protected == chat || gate == chat {
			pairs = append(pairs, domain.Pair{Gate: gate, Protected: protected})
		}
	}
	return pairs
}
