package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// DefaultCreateBatchSize bounds the rows per INSERT statement in CreateBatch.
const DefaultCreateBatchSize = 200

// GormRecordRepository implements record.Repository using GORM
type GormRecordRepository struct {
	db        *gorm.DB
	batchSize int
}

// NewGormRecordRepository creates a new GormRecordRepository
func NewGormRecordRepository(db *gorm.DB) *GormRecordRepository {
	return &GormRecordRepository{db: db, batchSize: DefaultCreateBatchSize}
}

// WithBatchSize sets the rows per INSERT statement; n <= 0 keeps the default.
func (r *GormRecordRepository) WithBatchSize(n int) *GormRecordRepository {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

// FindByID finds a record of kind by ID
func (r *GormRecordRepository) FindByID(ctx context.Context, kind record.Kind, id uuid.UUID) (*record.Record, error) {
	var model models.RecordModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the records of kind among ids. Unknown ids are skipped.
func (r *GormRecordRepository) FindByIDs(ctx context.Context, kind record.Kind, ids []uuid.UUID) ([]*record.Record, error) {
	if len(ids) == 0 {
		return []*record.Record{}, nil
	}
	var rows []models.RecordModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND id IN ?", kind, ids).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecords(rows), nil
}

// FindAll returns every record of kind, newest first.
func (r *GormRecordRepository) FindAll(ctx context.Context, kind record.Kind) ([]*record.Record, error) {
	var rows []models.RecordModel
	if err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("created_at DESC").
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecords(rows), nil
}

// Create creates a new record
func (r *GormRecordRepository) Create(ctx context.Context, rec *record.Record) error {
	return r.db.WithContext(ctx).Create(models.RecordModelFromDomain(rec)).Error
}

// CreateBatch inserts records in one transaction.
func (r *GormRecordRepository) CreateBatch(ctx context.Context, records []*record.Record) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]*models.RecordModel, len(records))
	for i, rec := range records {
		rows[i] = models.RecordModelFromDomain(rec)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, r.batchSize).Error
	})
}

// Update saves an existing record
func (r *GormRecordRepository) Update(ctx context.Context, rec *record.Record) error {
	return r.update(r.db.WithContext(ctx), rec)
}

// UpdateBatch saves records in one transaction. A missing record rolls back
// the whole batch.
func (r *GormRecordRepository) UpdateBatch(ctx context.Context, records []*record.Record) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			if err := r.update(tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRecordRepository) update(db *gorm.DB, rec *record.Record) error {
	model := models.RecordModelFromDomain(rec)
	result := db.Model(&models.RecordModel{}).
		Where("kind = ? AND id = ?", model.Kind, model.ID).
		Updates(map[string]any{
			"reference_code": model.ReferenceCode,
			"owner_ref":      model.OwnerRef,
			"fields":         model.Fields,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a record of kind by ID
func (r *GormRecordRepository) Delete(ctx context.Context, kind record.Kind, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		Delete(&models.RecordModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteBatch deletes the records of kind among ids in one statement and
// returns how many rows went away.
func (r *GormRecordRepository) DeleteBatch(ctx context.Context, kind record.Kind, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("kind = ? AND id IN ?", kind, ids).
		Delete(&models.RecordModel{})
	return result.RowsAffected, result.Error
}

func toRecords(rows []models.RecordModel) []*record.Record {
	out := make([]*record.Record, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// Ensure GormRecordRepository implements record.Repository
var _ record.Repository = (*GormRecordRepository)(nil)
