package storage

import (
	"context"
	"sync"

	"github.com/cppla/momentum/ledger"
)

// MemoryStore keeps ledger documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

var _ ledger.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Load(ctx context.Context, profile string) ([]byte, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.docs[profile]
	if !ok {
		return nil, ledger.ErrNoDocument
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, profile string, doc []byte) error {
	_ = ctx

	b := make([]byte, len(doc))
	copy(b, doc)

	s.mu.Lock()
	s.docs[profile] = b
	s.mu.Unlock()
	return nil
}
