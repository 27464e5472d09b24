package record

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/stretchr/testify/mock"
)

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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*record.Record), args.Error(1)
}

func (m *MockRecordRepository) FindAll(ctx context.Context, kind record.Kind) ([]*record.Record, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*record.Record), args.Error(1)
}

func (m *MockRecordRepository) Create(ctx context.Context, r *record.Record) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRecordRepository) CreateBatch(ctx context.Context, records []*record.Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockRecordRepository) Update(ctx context.Context, r *record.Record) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRecordRepository) UpdateBatch(ctx context.Context, records []*record.Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockRecordRepository) Delete(ctx context.Context, kind record.Kind, id uuid.UUID) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MockRecordRepository) DeleteBatch(ctx context.Context, kind record.Kind, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, kind, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockForwarder is a mock implementation of Forwarder
type MockForwarder struct {
	mock.Mock
}

func (m *MockForwarder) Forward(ctx context.Context, rec *record.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// memoryStorage is an in-memory AttachmentStorage
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (s *memoryStorage) Upload(_ context.Context, key string, body io.Reader, _ string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf.Bytes()
	return nil
}

func (s *memoryStorage) DownloadURL(_ context.Context, key string) (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return "", time.Time{}, errors.New("not found")
	}
	return "https://files.test/" + key, time.Now().Add(time.Hour), nil
}

func (s *memoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}
