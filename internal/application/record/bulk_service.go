package record

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/listview"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
	"github.com/salesdesk/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// MaxBulkIDs bounds the ids of one bulk request.
const MaxBulkIDs = 1000

// BulkInput is one bulk request. Field is only read by edits; Value
// carries the new field value, status or transfer target.
type BulkInput struct {
	IDs   []string
	Field string
	Value string
}

// BulkResult lists what a bulk action changed. Records holds the patched
// records so clients can update their local copies; it is empty for
// deletes. Forwarded and ForwardFailed list the records the action moved
// into the forward rule.
type BulkResult struct {
	Mode          string           `json:"mode"`
	Affected      []string         `json:"affected"`
	Records       []RecordResponse `json:"records,omitempty"`
	Forwarded     []string         `json:"forwarded,omitempty"`
	ForwardFailed []string         `json:"forward_failed,omitempty"`
}

// BulkService applies one bulk action to a selection of records
type BulkService struct {
	repo    record.Repository
	records *Service
	now     func() time.Time
	logger  *zap.Logger
}

// NewBulkService creates a new bulk service. Visibility is checked through
// records.
func NewBulkService(repo record.Repository, records *Service, logger *zap.Logger) *BulkService {
	return &BulkService{repo: repo, records: records, now: records.now, logger: logger}
}

// Execute runs mode over the selected ids. Every id must exist and be
// visible to session or nothing is changed. All changes go through one
// transaction.
func (s *BulkService) Execute(ctx context.Context, session identity.Session, kind record.Kind, mode listview.BulkMode, input BulkInput) (*BulkResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "record.bulk",
		attribute.String("record.kind", string(kind)),
		attribute.String("bulk.mode", mode.String()),
		attribute.Int("bulk.size", len(input.IDs)))
	defer span.End()

	schema, err := record.Lookup(kind)
	if err != nil {
		return nil, err
	}
	changes, err := bulkChanges(schema, mode, input)
	if err != nil {
		return nil, err
	}
	ids, err := parseIDs(input.IDs)
	if err != nil {
		return nil, err
	}

	found, err := s.repo.FindByIDs(ctx, kind, ids)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, shared.NewDomainError("NOT_FOUND", "Some selected records no longer exist")
	}
	for _, rec := range found {
		if !s.records.Visible(session, rec) {
			return nil, shared.ErrForbidden
		}
	}

	result := &BulkResult{Mode: mode.String(), Affected: make([]string, len(found))}
	for i, rec := range found {
		result.Affected[i] = rec.ID.String()
	}

	if mode == listview.BulkDelete {
		n, err := s.repo.DeleteBatch(ctx, kind, ids)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		s.log(ctx).Info("Bulk delete completed", zap.String("kind", string(kind)), zap.Int64("deleted", n))
		return result, nil
	}

	now := s.now()
	wasForwarded := make([]bool, len(found))
	for i, rec := range found {
		wasForwarded[i] = s.records.forwardable(schema, rec)
		rec.Patch(schema, changes, now)
	}
	if err := s.repo.UpdateBatch(ctx, found); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	result.Records = ToRecordResponses(schema, found)

	for i, rec := range found {
		if wasForwarded[i] || !s.records.forwardable(schema, rec) {
			continue
		}
		if err := s.records.forward(ctx, rec); err != nil {
			result.ForwardFailed = append(result.ForwardFailed, rec.ID.String())
			continue
		}
		result.Forwarded = append(result.Forwarded, rec.ID.String())
	}

	s.log(ctx).Info("Bulk update completed",
		zap.String("kind", string(kind)),
		zap.String("mode", mode.String()),
		zap.Int("updated", len(found)),
		zap.Int("forwarded", len(result.Forwarded)))
	return result, nil
}

func bulkChanges(schema *record.Schema, mode listview.BulkMode, input BulkInput) (map[string]any, error) {
	value := strings.TrimSpace(input.Value)
	switch mode {
	case listview.BulkDelete:
		return nil, nil
	case listview.BulkEdit:
		if err := schema.CheckBulkEdit(input.Field, value); err != nil {
			return nil, err
		}
		return map[string]any{input.Field: value}, nil
	case listview.BulkStatusChange:
		if err := schema.CheckStatus(value); err != nil {
			return nil, err
		}
		return map[string]any{schema.StatusField: value}, nil
	case listview.BulkTransferManager:
		if value == "" {
			return nil, shared.NewDomainError("INVALID_INPUT", "Target manager is required")
		}
		return map[string]any{schema.ManagerField: value}, nil
	case listview.BulkTransferAgent:
		if value == "" {
			return nil, shared.NewDomainError("INVALID_INPUT", "Target agent is required")
		}
		return map[string]any{schema.OwnerField: value}, nil
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "No bulk action selected")
	}
}

// parseIDs validates and de-duplicates the selection, keeping its order.
func parseIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "No records selected")
	}
	if len(raw) > MaxBulkIDs {
		return nil, shared.NewDomainError("INVALID_INPUT", "Too many records selected")
	}
	seen := make(map[uuid.UUID]struct{}, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(strings.TrimSpace(r))
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid record id: "+r)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *BulkService) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}
