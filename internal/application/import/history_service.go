package importapp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/bulk"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/domain/shared"
)

// ImportHistoryService lists past imports
type ImportHistoryService struct {
	historyRepo bulk.ImportHistoryRepository
}

// NewImportHistoryService creates a new ImportHistoryService
func NewImportHistoryService(historyRepo bulk.ImportHistoryRepository) *ImportHistoryService {
	return &ImportHistoryService{historyRepo: historyRepo}
}

// ListHistoryFilter defines the filter options for listing import histories
type ListHistoryFilter struct {
	Kind   string
	Status string
}

// HistoryPage is one page of import histories
type HistoryPage struct {
	Items    []*bulk.ImportHistory
	Total    int64
	Page     int
	PageSize int
}

// ListHistory returns import histories newest first. Administrators see
// every import, everyone else only their own.
func (s *ImportHistoryService) ListHistory(ctx context.Context, session identity.Session, filter ListHistoryFilter, page, pageSize int) (*HistoryPage, error) {
	repoFilter := bulk.ImportHistoryFilter{}
	if filter.Kind != "" {
		kind, err := record.ParseKind(filter.Kind)
		if err != nil {
			return nil, err
		}
		repoFilter.Kind = kind
	}
	if filter.Status != "" {
		status := bulk.ImportStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Unknown import status: "+filter.Status)
		}
		repoFilter.Status = status
	}
	if !session.Role.IsAdministrative() {
		repoFilter.ImportedBy = session.Username
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	items, total, err := s.historyRepo.FindAll(ctx, repoFilter, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// GetHistory returns one import history visible to session
func (s *ImportHistoryService) GetHistory(ctx context.Context, session identity.Session, id uuid.UUID) (*bulk.ImportHistory, error) {
	h, err := s.historyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Role.IsAdministrative() && h.ImportedBy != session.Username {
		return nil, shared.ErrNotFound
	}
	return h, nil
}

// FailStale marks imports that have been unfinished for longer than maxAge
// as failed. An import runs inside a single request, so one still pending
// after that long was abandoned by a crashed or restarted process.
func (s *ImportHistoryService) FailStale(ctx context.Context, maxAge time.Duration) (int, error) {
	stale, err := s.historyRepo.FindUnfinished(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	failed := 0
	for _, h := range stale {
		if err := h.Fail("Import interrupted before completion"); err != nil {
			continue
		}
		if err := s.historyRepo.Save(ctx, h); err != nil {
			return failed, fmt.Errorf("failed to save import history %s: %w", h.ID, err)
		}
		failed++
	}
	return failed, nil
}
