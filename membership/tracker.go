// Package membership tracks who is currently in each gate chat.
// Records are seq-guarded so that at-least-once, out-of-order delivery
// from the platform collapses to a deterministic final state.
package membership

import (
	"log/slog"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"gatekeeper/domain"
	"gatekeeper/storage"
)

type memberKey struct {
	Gate domain.ChatID
	User domain.UserID
}

type memberRecord struct {
	Present      bool   `cbor:"1,keyasint"`
	LastEventSeq uint64 `cbor:"2,keyasint"`
}

// Tracker is a cache over the store's member namespace. Records are
// never actively deleted (bounded by chat size); PruneGate clears a
// gate's records when its last pair goes away.
type Tracker struct {
	mu      sync.RWMutex
	store   storage.Store
	log     *slog.Logger
	records map[memberKey]domain.MembershipRecord
}

func NewTracker(store storage.Store, log *slog.Logger) *Tracker {
	return &Tracker{
		store:   store,
		log:     log,
		records: make(map[memberKey]domain.MembershipRecord),
	}
}

// Load rebuilds the cache from the store at startup.
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = make(map[memberKey]domain.MembershipRecord)
	err := t.store.ScanPrefix(storage.MemberPrefix, func(key string, value []byte) error {
		gate, user, err := storage.SplitKey(key, storage.MemberPrefix)
		if err != nil {
			return err
		}
		var rec memberRecord
		if err := cbor.Unmarshal(value, &rec); err != nil {
			return err
		}
		t.records[memberKey{Gate: domain.ChatID(gate), User: domain.UserID(user)}] = domain.MembershipRecord{
			Present:      rec.Present,
			LastEventSeq: rec.LastEventSeq,
		}
		return nil
	})
	if err != nil {
		return err
	}
	t.log.Info("Membership records loaded", "records", len(t.records))
	return nil
}

// Apply records a membership event for (gate, user). It is idempotent
// and order-tolerant: an event whose sequence number is not strictly
// newer than the last applied one is a no-op and reports false.
// The record is durable before the cache changes.
func (t *Tracker) Apply(gate domain.ChatID, user domain.UserID, seq uint64, present bool) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := memberKey{Gate: gate, User: user}
	if existing, ok := t.records[key]; ok && seq <= existing.LastEventSeq {
		return false, nil
	}

	value, err := cbor.Marshal(memberRecord{Present: present, LastEventSeq: seq})
	if err != nil {
		return false, err
	}
	if err := t.store.Put(storage.MemberKey(gate, user), value); err != nil {
		return false, err
	}

	t.records[key] = domain.MembershipRecord{Present: present, LastEventSeq: seq}
	return true, nil
}

// IsMember answers present, absent, or unknown. Unknown means no event
// has ever been observed for this (gate, user); the engine treats it
// as "wait for evidence", never as a boolean.
func (t *Tracker) IsMember(gate domain.ChatID, user domain.UserID) domain.MembershipState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.records[memberKey{Gate: gate, User: user}]
	switch {
	case !ok:
		return domain.MembershipUnknown
	case rec.Present:
		return domain.MembershipPresent
	default:
		return domain.MembershipAbsent
	}
}

// PruneGate drops every membership record of a gate chat, memory and
// store both. Used when the gate no longer serves any pair.
func (t *Tracker) PruneGate(gate domain.ChatID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var keys []string
	err := t.store.ScanPrefix(storage.MemberGatePrefix(gate), func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := t.store.Delete(key); err != nil {
			return err
		}
	}

	for key := range t.records {
		if key.Gate == gate {
			delete(t.records, key)
		}
	}
	t.log.Info("Gate membership pruned", "gate", gate, "records", len(keys))
	return nil
}
