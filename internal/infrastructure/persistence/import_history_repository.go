package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/bulk"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormImportHistoryRepository implements ImportHistoryRepository using GORM
type GormImportHistoryRepository struct {
	db *gorm.DB
}

// NewGormImportHistoryRepository creates a new GormImportHistoryRepository
func NewGormImportHistoryRepository(db *gorm.DB) *GormImportHistoryRepository {
	return &GormImportHistoryRepository{db: db}
}

// FindByID finds an import history by ID
func (r *GormImportHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*bulk.ImportHistory, error) {
	var model models.ImportHistoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns import histories with pagination and filtering
func (r *GormImportHistoryRepository) FindAll(
	ctx context.Context,
	filter bulk.ImportHistoryFilter,
	page, pageSize int,
) ([]*bulk.ImportHistory, int64, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.ImportHistoryModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var rows []models.ImportHistoryModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	histories := make([]*bulk.ImportHistory, len(rows))
	for i := range rows {
		histories[i] = rows[i].ToDomain()
	}
	return histories, total, nil
}

// Save creates or updates an import history
func (r *GormImportHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	return r.db.WithContext(ctx).Save(models.ImportHistoryModelFromDomain(history)).Error
}

// FindUnfinished returns imports that never reached a terminal state
func (r *GormImportHistoryRepository) FindUnfinished(ctx context.Context, createdBefore time.Time) ([]*bulk.ImportHistory, error) {
	var rows []models.ImportHistoryModel
	err := r.db.WithContext(ctx).
		Where("status IN ?", []bulk.ImportStatus{bulk.ImportStatusPending, bulk.ImportStatusProcessing}).
		Where("created_at < ?", createdBefore).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	histories := make([]*bulk.ImportHistory, len(rows))
	for i := range rows {
		histories[i] = rows[i].ToDomain()
	}
	return histories, nil
}

func (r *GormImportHistoryRepository) applyFilters(query *gorm.DB, filter bulk.ImportHistoryFilter) *gorm.DB {
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ImportedBy != "" {
		query = query.Where("imported_by = ?", filter.ImportedBy)
	}
	return query
}

// Ensure GormImportHistoryRepository implements bulk.ImportHistoryRepository
var _ bulk.ImportHistoryRepository = (*GormImportHistoryRepository)(nil)
