package bulk

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/record"
)

// ImportHistoryFilter defines the filters for querying import histories
type ImportHistoryFilter struct {
	Kind       record.Kind
	Status     ImportStatus
	ImportedBy string
}

// ImportHistoryRepository defines the interface for import history persistence
type ImportHistoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ImportHistory, error)
	// FindAll returns histories newest first and the total matching count.
	FindAll(ctx context.Context, filter ImportHistoryFilter, page, pageSize int) ([]*ImportHistory, int64, error)
	Save(ctx context.Context, history *ImportHistory) error
	// FindUnfinished returns pending or processing imports created before the cutoff.
	FindUnfinished(ctx context.Context, createdBefore time.Time) ([]*ImportHistory, error)
}
