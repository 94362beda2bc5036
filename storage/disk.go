package storage

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	errs "gatekeeper/errors"
)

var _ Store = (*DiskStore)(nil)

// DiskStore backs Store with BadgerDB. Badger gives atomic single-key
// writes through its WAL, which is exactly the crash contract Store
// promises, so no extra write-ahead scheme is layered on top.
type DiskStore struct {
	db  *badger.DB
	log *slog.Logger
}

func NewDiskStore(db *badger.DB, log *slog.Logger) *DiskStore {
	return &DiskStore{db: db, log: log}
}

func (s *DiskStore) Put(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", errs.ErrStorageUnavailable, key, err)
	}
	return nil
}

// Get returns the value and whether the key exists. Absence is not an
// error; it drives the tracker's "unknown" state.
func (s *DiskStore) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case err == badger.ErrKeyNotFound:
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("%w: get %s: %v", errs.ErrStorageUnavailable, key, err)
	}
	return value, true, nil
}

func (s *DiskStore) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", errs.ErrStorageUnavailable, key, err)
	}
	return nil
}

// ScanPrefix visits every record under prefix in key order. An error
// from fn stops the scan; it surfaces wrapped as storage unavailable
// since a record the callback cannot digest means a corrupt store.
func (s *DiskStore) ScanPrefix(prefix string, fn func(key string, value []byte) error) error {
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(value []byte) error {
				return fn(key, value)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: scan %s: %v", errs.ErrStorageUnavailable, prefix, err)
	}
	return nil
}
