package storage

import (
	"sync"

	"github.com/olehkaliuzhnyi/cryptos/pkg/models"
)

// MemoryTxStore is an in-memory TxStore.
type MemoryTxStore struct {
	mu      sync.RWMutex
	records map[string]*models.BroadcastRecord
}

func NewMemoryTxStore() *MemoryTxStore {
	return &MemoryTxStore{records: make(map[string]*models.BroadcastRecord)}
}

func (s *MemoryTxStore) Get(idempotencyKey string) (*models.BroadcastRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[idempotencyKey], nil
}

func (s *MemoryTxStore) Put(idempotencyKey string, rec *models.BroadcastRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[idempotencyKey] = rec
	return nil
}

// MemoryWatchStore is an in-memory WatchStore.
type MemoryWatchStore struct {
	mu    sync.RWMutex
	addrs map[string]bool
}

func NewMemoryWatchStore() *MemoryWatchStore {
	return &MemoryWatchStore{addrs: make(map[string]bool)}
}

func (s *MemoryWatchStore) Add(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addrs[address] = true
	return nil
}

func (s *MemoryWatchStore) Remove(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.addrs, address)
	return nil
}

func (s *MemoryWatchStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]string, 0, len(s.addrs))
	for addr := range s.addrs {
		result = append(result, addr)
	}
	return result, nil
}

func (s *MemoryWatchStore) Contains(address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addrs[address], nil
}
