package record

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists records. FindAll always returns the whole collection
// of a kind; filtering and paging happen in the list engine.
type Repository interface {
	FindByID(ctx context.Context, kind Kind, id uuid.UUID) (*Record, error)
	FindByIDs(ctx context.Context, kind Kind, ids []uuid.UUID) ([]*Record, error)
	FindAll(ctx context.Context, kind Kind) ([]*Record, error)
	Create(ctx context.Context, r *Record) error
	// CreateBatch inserts all records in one transaction or none of them.
	CreateBatch(ctx context.Context, records []*Record) error
	Update(ctx context.Context, r *Record) error
	// UpdateBatch saves all records in one transaction or none of them.
	UpdateBatch(ctx context.Context, records []*Record) error
	Delete(ctx context.Context, kind Kind, id uuid.UUID) error
	DeleteBatch(ctx context.Context, kind Kind, ids []uuid.UUID) (int64, error)
}
