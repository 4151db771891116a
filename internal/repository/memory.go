package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gpudex/a100-index-backend/internal/models"
)

// MemoryIndexStore is an in-memory IndexStore. It backs unit tests and
// lets the scheduler run without Postgres in local development.
type MemoryIndexStore struct {
	mu      sync.Mutex
	nextID  int64
	records []models.IndexRecord
}

func NewMemoryIndexStore() *MemoryIndexStore {
	return &MemoryIndexStore{nextID: 1}
}

var _ IndexStore = (*MemoryIndexStore)(nil)

func (m *MemoryIndexStore) Append(ctx context.Context, rec *models.IndexRecord) (*models.IndexRecord, error) {
	if err := validateRecord(rec); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *rec
	stored.ID = m.nextID
	m.nextID++
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.records = append(m.records, stored)

	out := stored
	return &out, nil
}

func (m *MemoryIndexStore) Latest(ctx context.Context) (*models.IndexRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *models.IndexRecord
	for i := range m.records {
		r := &m.records[i]
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (m *MemoryIndexStore) History(ctx context.Context, limit int) ([]models.IndexRecord, error) {
	return m.scan(limit, true), nil
}

func (m *MemoryIndexStore) Ledger(ctx context.Context, limit int) ([]models.IndexRecord, error) {
	return m.scan(limit, false), nil
}

func (m *MemoryIndexStore) scan(limit int, validatedOnly bool) []models.IndexRecord {
	if limit <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.IndexRecord, 0, len(m.records))
	for _, r := range m.records {
		if validatedOnly && !r.ValidationPassed {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
