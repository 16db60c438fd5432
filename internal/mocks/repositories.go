package mocks

import (
	"context"
	"sync"

	"github.com/khabar-news/khabar/internal/models"
	"github.com/khabar-news/khabar/internal/repository"
)

// MockDispatchRepository is a mock implementation of DispatchRepository
type MockDispatchRepository struct {
	mu          sync.Mutex
	Records     []*models.DispatchRecord
	InsertError error
	RecentError error
	CreateCalls int
}

// Verify interface compliance
var _ repository.DispatchRepository = (*MockDispatchRepository)(nil)

func NewMockDispatchRepository() *MockDispatchRepository {
	return &MockDispatchRepository{
		Records: make([]*models.DispatchRecord, 0),
	}
}

func (m *MockDispatchRepository) Create(ctx context.Context, record *models.DispatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Records = append(m.Records, record)
	return nil
}

func (m *MockDispatchRepository) Recent(ctx context.Context, kinds []models.DispatchKind, limit int) ([]*models.DispatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecentError != nil {
		return nil, m.RecentError
	}

	want := make(map[models.DispatchKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}

	var out []*models.DispatchRecord
	for i := len(m.Records) - 1; i >= 0; i-- {
		r := m.Records[i]
		if len(want) > 0 && !want[r.Kind] {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockDispatchRepository) CountByStatus(ctx context.Context) (map[models.DispatchStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[models.DispatchStatus]int)
	for _, r := range m.Records {
		counts[r.Status]++
	}
	return counts, nil
}
