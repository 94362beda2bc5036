//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks

// Package storage is the durability layer. Everything the process must
// remember across restarts goes through Store; the in-memory registry
// and tracker are caches rebuilt from it at startup.
package storage

// Store is a durable key/value contract. A Put or Delete that returns
// nil is crash-durable: a restart never observes a partial record.
// Every failure wraps errors.ErrStorageUnavailable and is fatal for
// the triggering operation.
type Store interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, bool, error)
	Delete(key string) error
	ScanPrefix(prefix string, fn func(key string, value []byte) error) error
}
