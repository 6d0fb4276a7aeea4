package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps player records in memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]PlayerRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]PlayerRecord)}
}

func (r *MemoryRepository) Get(_ context.Context, name string) (*PlayerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (r *MemoryRepository) Save(_ context.Context, record *PlayerRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *record
	stored.UpdatedAt = time.Now().UTC()
	r.records[record.Name] = stored
	record.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[name]; !ok {
		return ErrNotFound
	}
	delete(r.records, name)
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
