package repository

import (
	"context"

	"github.com/khabar-news/khabar/internal/database"
	"github.com/khabar-news/khabar/internal/models"
)

// DispatchRepository defines the interface for the email delivery audit log
type DispatchRepository interface {
	Create(ctx context.Context, record *models.DispatchRecord) error
	Recent(ctx context.Context, kinds []models.DispatchKind, limit int) ([]*models.DispatchRecord, error)
	CountByStatus(ctx context.Context) (map[models.DispatchStatus]int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Dispatch DispatchRepository
}

// New creates all repositories; a nil db yields no-op implementations
func New(db *database.DB) *Repositories {
	if db == nil {
		return &Repositories{Dispatch: NewNoopDispatchRepo()}
	}
	return &Repositories{
		Dispatch: NewDispatchRepo(db),
	}
}
