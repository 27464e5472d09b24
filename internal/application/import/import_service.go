// Package importapp implements spreadsheet import and export of records.
package importapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	recordapp "github.com/salesdesk/backend/internal/application/record"
	"github.com/salesdesk/backend/internal/domain/bulk"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
	"github.com/salesdesk/backend/internal/infrastructure/spreadsheet"
	"go.uber.org/zap"
)

// Config bounds imports
type Config struct {
	MaxFileSize int64
	MaxRows     int
}

// DefaultConfig returns the limits used when none are configured
func DefaultConfig() Config {
	return Config{MaxFileSize: 10 << 20, MaxRows: 10000}
}

// ImportInput is one uploaded spreadsheet
type ImportInput struct {
	FileName string
	FileSize int64
	Body     io.Reader
	// Constants are merged into every row, overriding positional values.
	Constants map[string]string
}

// ImportResult reports a finished import
type ImportResult struct {
	HistoryID string `json:"history_id"`
	Inserted  int    `json:"inserted"`
}

// Service imports spreadsheets into records
type Service struct {
	records *recordapp.Service
	history bulk.ImportHistoryRepository
	config  Config
	logger  *zap.Logger
}

// NewService creates a new import service
func NewService(records *recordapp.Service, history bulk.ImportHistoryRepository, config Config, logger *zap.Logger) *Service {
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = DefaultConfig().MaxFileSize
	}
	if config.MaxRows <= 0 {
		config.MaxRows = DefaultConfig().MaxRows
	}
	return &Service{records: records, history: history, config: config, logger: logger}
}

// Import reads the first sheet of the file, skips its header row, maps
// column positions to the module's import columns, merges the constants and
// inserts every row as one batch. The batch succeeds or fails as a whole;
// either way an import history entry is kept.
func (s *Service) Import(ctx context.Context, session identity.Session, kind record.Kind, input ImportInput) (*ImportResult, error) {
	schema, err := record.Lookup(kind)
	if err != nil {
		return nil, err
	}
	if len(schema.ImportColumns) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", schema.Title+" cannot be imported")
	}
	constants, err := checkConstants(schema, input.Constants)
	if err != nil {
		return nil, err
	}
	format, err := spreadsheet.DetectFormat(input.FileName)
	if err != nil {
		return nil, shared.NewDomainError(spreadsheet.ErrCodeImportInvalidFile, "Only .xlsx and .csv files can be imported")
	}
	if input.FileSize > s.config.MaxFileSize {
		return nil, shared.NewDomainError(spreadsheet.ErrCodeImportFileTooLarge,
			fmt.Sprintf("File exceeds the %d MB limit", s.config.MaxFileSize>>20))
	}

	history, err := bulk.NewImportHistory(kind, input.FileName, input.FileSize, session.Username)
	if err != nil {
		return nil, err
	}
	history.Constants = constants
	if err := s.history.Save(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to save import history: %w", err)
	}

	log := logger.FromContextOr(ctx, s.logger).With(
		zap.String("kind", string(kind)),
		zap.String("file", input.FileName),
		zap.String("history_id", history.ID.String()))

	// Read at most one byte past the limit so oversized bodies are caught
	// even when the declared size lies.
	body, err := io.ReadAll(io.LimitReader(input.Body, s.config.MaxFileSize+1))
	if err != nil {
		return nil, s.fail(ctx, history, fmt.Errorf("failed to read upload: %w", err))
	}
	if int64(len(body)) > s.config.MaxFileSize {
		return nil, s.fail(ctx, history, shared.NewDomainError(spreadsheet.ErrCodeImportFileTooLarge, "File is too large"))
	}

	sheet, err := spreadsheet.Read(bytes.NewReader(body), format, spreadsheet.WithMaxRows(s.config.MaxRows))
	if err != nil {
		return nil, s.fail(ctx, history, shared.NewDomainError(spreadsheet.Code(err), "Failed to read spreadsheet: "+err.Error()))
	}
	if err := history.StartProcessing(len(sheet.Rows)); err != nil {
		return nil, err
	}

	rows := MapRows(schema, sheet, constants)
	inserted, err := s.records.CreateBatch(ctx, session, kind, rows)
	if err != nil {
		log.Warn("Import failed", zap.Error(err))
		return nil, s.fail(ctx, history, err)
	}

	if err := history.Complete(len(inserted)); err != nil {
		return nil, err
	}
	if err := s.history.Save(ctx, history); err != nil {
		log.Error("Failed to save import history", zap.Error(err))
	}
	log.Info("Import completed", zap.Int("inserted", len(inserted)))
	return &ImportResult{HistoryID: history.ID.String(), Inserted: len(inserted)}, nil
}

// MapRows turns sheet rows into record fields by column position.
func MapRows(schema *record.Schema, sheet *spreadsheet.Sheet, constants map[string]string) []record.Fields {
	rows := make([]record.Fields, len(sheet.Rows))
	for i := range sheet.Rows {
		fields := make(record.Fields, len(schema.ImportColumns)+len(constants))
		for j, name := range schema.ImportColumns {
			fields[name] = sheet.Cell(i, j)
		}
		for k, v := range constants {
			fields[k] = v
		}
		rows[i] = fields
	}
	return rows
}

// checkConstants keeps the non-empty constants and rejects fields the
// module does not take as constants.
func checkConstants(schema *record.Schema, in map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(in))
	for k, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if !slices.Contains(schema.ImportConsts, k) {
			return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("%q cannot be set for every imported row", k))
		}
		out[k] = v
	}
	return out, nil
}

// fail records the failure on history and returns cause.
func (s *Service) fail(ctx context.Context, history *bulk.ImportHistory, cause error) error {
	msg := cause.Error()
	var de *shared.DomainError
	if errors.As(cause, &de) {
		msg = de.Message
	}
	if err := history.Fail(msg); err == nil {
		if err := s.history.Save(ctx, history); err != nil {
			logger.FromContextOr(ctx, s.logger).Error("Failed to save import history", zap.Error(err))
		}
	}
	return cause
}
