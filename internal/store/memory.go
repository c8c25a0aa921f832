package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"loopwise-go/internal/models"
)

var (
	_ PreferenceStore = (*MemoryPreferenceStore)(nil)
	_ TransferJournal = (*MemoryTransferJournal)(nil)
)

// MemoryPreferenceStore keeps preferences for the lifetime of the process.
type MemoryPreferenceStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{values: make(map[string]string)}
}

func (m *MemoryPreferenceStore) GetValue(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryPreferenceStore) PutValue(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryPreferenceStore) DeleteValue(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryPreferenceStore) Close() {}

// MemoryTransferJournal is a process-local TransferJournal.
type MemoryTransferJournal struct {
	mu      sync.RWMutex
	records map[string]models.TransferRecord
	byKey   map[string]string // idempotency key -> id
}

func NewMemoryTransferJournal() *MemoryTransferJournal {
	return &MemoryTransferJournal{
		records: make(map[string]models.TransferRecord),
		byKey:   make(map[string]string),
	}
}

func (m *MemoryTransferJournal) RecordTransfer(_ context.Context, rec models.TransferRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byKey[rec.IdempotencyKey]; exists {
		return ErrDuplicateTransfer
	}
	if _, exists := m.records[rec.Id]; exists {
		return ErrDuplicateTransfer
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	m.records[rec.Id] = rec
	m.byKey[rec.IdempotencyKey] = rec.Id
	return nil
}

func (m *MemoryTransferJournal) UpdateTransferStatus(_ context.Context, id string, status models.TransferStatus, txHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.Status = status
	if txHash != "" {
		rec.TxHash = txHash
	}
	rec.UpdatedAt = time.Now().UTC()
	m.records[id] = rec
	return nil
}

func (m *MemoryTransferJournal) GetTransfer(_ context.Context, id string) (*models.TransferRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *MemoryTransferJournal) GetPendingTransfers(_ context.Context) ([]models.TransferRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var pending []models.TransferRecord
	for _, rec := range m.records {
		if !rec.Settled() {
			pending = append(pending, rec)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending, nil
}

func (m *MemoryTransferJournal) Close() {}
