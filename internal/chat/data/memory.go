package data

import (
	"context"
	"sync"
)

// MemoryStore is an in-process DurableStore used in tests and as the default
// backend when no external store is configured. FailPuts / FailDeletes let
// tests force the write-behind path to fail.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*TopicRecord

	FailPuts    error // when non-nil, Put returns this error
	FailDeletes error // when non-nil, Delete returns this error
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*TopicRecord)}
}

// Put implements DurableStore
func (s *MemoryStore) Put(ctx context.Context, rec *TopicRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPuts != nil {
		return s.FailPuts
	}
	if existing, ok := s.records[rec.ID]; ok && existing.Seq >= rec.Seq {
		// superseded record, keep the fresher one
		return nil
	}

	cp := *rec
	cp.Messages = append(cp.Messages[:0:0], rec.Messages...)
	s.records[rec.ID] = &cp
	return nil
}

// Get implements DurableStore
func (s *MemoryStore) Get(ctx context.Context, id string) (*TopicRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	cp := *rec
	cp.Messages = append(cp.Messages[:0:0], rec.Messages...)
	return &cp, nil
}

// Delete implements DurableStore
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDeletes != nil {
		return s.FailDeletes
	}

	delete(s.records, id)
	return nil
}

// Len reports the number of stored records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
