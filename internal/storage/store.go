package storage

import "github.com/olehkaliuzhnyi/cryptos/pkg/models"

// TxStore provides idempotent broadcast-record storage, keyed by a
// caller-supplied idempotency key, so a repeated Send with the same
// key returns the prior broadcast instead of resubmitting.
type TxStore interface {
	// Get returns a previously stored record by idempotency key, or nil if not found.
	Get(idempotencyKey string) (*models.BroadcastRecord, error)
	// Put stores a record keyed by idempotency key.
	Put(idempotencyKey string, rec *models.BroadcastRecord) error
}

// WatchStore manages the set of watched addresses.
type WatchStore interface {
	// Add adds an address to the watch set.
	Add(address string) error
	// Remove removes an address from the watch set.
	Remove(address string) error
	// List returns all currently watched addresses.
	List() ([]string, error)
	// Contains checks if an address is in the watch set.
	Contains(address string) (bool, error)
}
