package importapp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/bulk"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/stretchr/testify/mock"
)

// MockImportHistoryRepository is a mock implementation of ImportHistoryRepository
type MockImportHistoryRepository struct {
	mock.Mock
}

func (m *MockImportHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*bulk.ImportHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bulk.ImportHistory), args.Error(1)
}

func (m *MockImportHistoryRepository) FindAll(ctx context.Context, filter bulk.ImportHistoryFilter, page, pageSize int) ([]*bulk.ImportHistory, int64, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*bulk.ImportHistory), args.Get(1).(int64), args.Error(2)
}

func (m *MockImportHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockImportHistoryRepository) FindUnfinished(ctx context.Context, createdBefore time.Time) ([]*bulk.ImportHistory, error) {
	args := m.Called(ctx, createdBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bulk.ImportHistory), args.Error(1)
}

// MockRecordRepository is a mock implementation of record.Repository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) FindByID(ctx context.Context, kind record.Kind, id uuid.UUID) (*record.Record, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.Record), args.Error(1)
}

func (m *MockRecordRepository) FindByIDs(ctx context.Context, kind record.Kind, ids []uuid.UUID) ([]*record.Record, error) {
	args := m.Called(ctx, kind, ids)
	return args.Get(0).([]*record.Record), args.Error(1)
}

func (m *MockRecordRepository) FindAll(ctx context.Context, kind record.Kind) ([]*record.Record, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]*record.Record), args.Error(1)
}

func (m *MockRecordRepository) Create(ctx context.Context, r *record.Record) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRecordRepository) CreateBatch(ctx context.Context, records []*record.Record) error {
	return m.Called(ctx, records).Error(0)
}

func (m *MockRecordRepository) Update(ctx context.Context, r *record.Record) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRecordRepository) UpdateBatch(ctx context.Context, records []*record.Record) error {
	return m.Called(ctx, records).Error(0)
}

func (m *MockRecordRepository) Delete(ctx context.Context, kind record.Kind, id uuid.UUID) error {
	return m.Called(ctx, kind, id).Error(0)
}

func (m *MockRecordRepository) DeleteBatch(ctx context.Context, kind record.Kind, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, kind, ids)
	return args.Get(0).(int64), args.Error(1)
}
