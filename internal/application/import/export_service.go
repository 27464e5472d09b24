package importapp

import (
	"bytes"
	"context"

	recordapp "github.com/salesdesk/backend/internal/application/record"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
	"github.com/salesdesk/backend/internal/infrastructure/spreadsheet"
	"go.uber.org/zap"
)

// ExportFile is a generated spreadsheet
type ExportFile struct {
	FileName    string
	ContentType string
	Rows        int
	Data        []byte
}

// ExportService writes filtered record lists to spreadsheets
type ExportService struct {
	records *recordapp.Service
	logger  *zap.Logger
}

// NewExportService creates a new export service
func NewExportService(records *recordapp.Service, logger *zap.Logger) *ExportService {
	return &ExportService{records: records, logger: logger}
}

// Export writes every record passing q, not just the current page, with the
// module's fixed export columns. The file is named after the module.
func (s *ExportService) Export(ctx context.Context, session identity.Session, kind record.Kind, q recordapp.ListQuery, format spreadsheet.Format) (*ExportFile, error) {
	schema, err := record.Lookup(kind)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = spreadsheet.FormatXLSX
	}
	items, err := s.records.Filtered(ctx, session, kind, q)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := spreadsheet.Write(&buf, format, BuildTable(schema, items)); err != nil {
		return nil, err
	}

	logger.FromContextOr(ctx, s.logger).Info("Export generated",
		zap.String("kind", string(kind)),
		zap.Int("rows", len(items)))

	return &ExportFile{
		FileName:    string(kind) + "." + string(format),
		ContentType: spreadsheet.ContentType(format),
		Rows:        len(items),
		Data:        buf.Bytes(),
	}, nil
}

// BuildTable maps records onto the export columns of schema. Numbers stay
// numeric; everything else is written as text.
func BuildTable(schema *record.Schema, items []*record.Record) spreadsheet.Table {
	t := spreadsheet.Table{
		SheetName: schema.Title,
		Headers:   make([]string, len(schema.ExportColumns)),
		Rows:      make([][]any, len(items)),
	}
	for i, c := range schema.ExportColumns {
		t.Headers[i] = c.Header
	}
	for i, rec := range items {
		row := make([]any, len(schema.ExportColumns))
		for j, c := range schema.ExportColumns {
			switch v := rec.Fields[c.Field].(type) {
			case float64, int, int64:
				row[j] = v
			default:
				row[j] = rec.Value(c.Field)
			}
		}
		t.Rows[i] = row
	}
	return t
}
