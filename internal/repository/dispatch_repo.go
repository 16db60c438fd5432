package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/khabar-news/khabar/internal/database"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/lib/pq"
)

// MaxRecentLimit caps Recent queries
const MaxRecentLimit = 500

// dispatchRepo is the postgres implementation of DispatchRepository
type dispatchRepo struct {
	db *database.DB
}

// NewDispatchRepo creates a new dispatch log repository
func NewDispatchRepo(db *database.DB) DispatchRepository {
	return &dispatchRepo{db: db}
}

// Create inserts a record, assigning an id and timestamp when missing
func (r *dispatchRepo) Create(ctx context.Context, record *models.DispatchRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO dispatch_log (id, kind, recipient, provider, subject, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.Kind, record.Recipient, record.Provider, record.Subject,
		record.Status, nullString(record.Error), record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting dispatch record: %w", err)
	}
	return nil
}

// Recent returns the newest records, optionally restricted to the given kinds
func (r *dispatchRepo) Recent(ctx context.Context, kinds []models.DispatchKind, limit int) ([]*models.DispatchRecord, error) {
	if limit <= 0 || limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	filter := make([]string, 0, len(kinds))
	for _, k := range kinds {
		filter = append(filter, string(k))
	}

	query := `
		SELECT id, kind, recipient, provider, subject, status, error, created_at
		FROM dispatch_log
		WHERE cardinality($1::text[]) = 0 OR kind = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(filter), limit)
	if err != nil {
		return nil, fmt.Errorf("querying dispatch log: %w", err)
	}
	defer rows.Close()

	var records []*models.DispatchRecord
	for rows.Next() {
		var rec models.DispatchRecord
		var errText sql.NullString
		if err := rows.Scan(
			&rec.ID, &rec.Kind, &rec.Recipient, &rec.Provider, &rec.Subject,
			&rec.Status, &errText, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.Error = errText.String
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// CountByStatus aggregates the log by delivery outcome
func (r *dispatchRepo) CountByStatus(ctx context.Context) (map[models.DispatchStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM dispatch_log GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting dispatch log: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.DispatchStatus]int)
	for rows.Next() {
		var status models.DispatchStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// noopDispatchRepo discards records when the database is disabled
type noopDispatchRepo struct{}

// NewNoopDispatchRepo creates a repository that stores nothing
func NewNoopDispatchRepo() DispatchRepository {
	return noopDispatchRepo{}
}

func (noopDispatchRepo) Create(ctx context.Context, record *models.DispatchRecord) error {
	return nil
}

func (noopDispatchRepo) Recent(ctx context.Context, kinds []models.DispatchKind, limit int) ([]*models.DispatchRecord, error) {
	return nil, nil
}

func (noopDispatchRepo) CountByStatus(ctx context.Context) (map[models.DispatchStatus]int, error) {
	return map[models.DispatchStatus]int{}, nil
}
