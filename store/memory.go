package store

import (
	"context"
	"sync"

	"github.com/nubngpi/resultscraper/models"
)

// Memory is a process-local Store, used when no database is configured.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]models.StudentRecord
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string][]models.StudentRecord)}
}

func (m *Memory) FindByRoll(_ context.Context, roll string) (*models.StudentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := m.records[roll]
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	rec := recs[0]
	return &rec, nil
}

func (m *Memory) Insert(_ context.Context, rec *models.StudentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Roll] = append(m.records[rec.Roll], *rec)
	return nil
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Close() {}
