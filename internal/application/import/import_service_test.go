package importapp

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	recordapp "github.com/salesdesk/backend/internal/application/record"
	"github.com/salesdesk/backend/internal/domain/bulk"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/spreadsheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)

func adminSession() identity.Session {
	return identity.Session{UserID: uuid.New(), Username: "admin", ReferenceID: "AD-0001", Role: identity.RoleAdmin}
}

func newImportService(repo *MockRecordRepository, history *MockImportHistoryRepository, cfg Config) *Service {
	records := recordapp.NewService(repo, zap.NewNop(), recordapp.WithClock(func() time.Time { return fixedNow }))
	return NewService(records, history, cfg, zap.NewNop())
}

func accountsWorkbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	err := spreadsheet.Write(&buf, spreadsheet.FormatXLSX, spreadsheet.Table{
		Headers: []string{"Company", "Contact", "Number", "Email", "Address", "Area", "Type", "Status", "Industry"},
		Rows:    rows,
	})
	require.NoError(t, err)
	return &buf
}

func TestService_Import_TwoRows(t *testing.T) {
	repo := new(MockRecordRepository)
	history := new(MockImportHistoryRepository)
	svc := newImportService(repo, history, DefaultConfig())

	var inserted []*record.Record
	repo.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { inserted = args.Get(1).([]*record.Record) }).
		Return(nil)
	history.On("Save", mock.Anything, mock.AnythingOfType("*bulk.ImportHistory")).Return(nil)

	file := accountsWorkbook(t,
		[]any{"Acme", "Jane", "0917", "jane@acme.test", "Makati", "NCR", "Top 50", "Active", "Retail"},
		[]any{"Globex", "Hank", "0918", "", "Cebu", "Visayas", "Next 30", "Active"},
	)
	result, err := svc.Import(context.Background(), adminSession(), record.KindAccounts, ImportInput{
		FileName:  "accounts.xlsx",
		FileSize:  int64(file.Len()),
		Body:      file,
		Constants: map[string]string{"referenceid": "JG-1234", "manager": "MG-0001", "tsm": "TS-0001", "quota": "5000"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)

	require.Len(t, inserted, 2)
	for _, rec := range inserted {
		assert.Equal(t, "JG-1234", rec.OwnerRef)
		assert.Equal(t, "MG-0001", rec.Fields.String("manager"))
		assert.Equal(t, "TS-0001", rec.Fields.String("tsm"))
		assert.Equal(t, float64(5000), rec.Fields["quota"])
	}
	assert.Equal(t, "Acme", inserted[0].Fields.String("companyname"))
	assert.Equal(t, "Retail", inserted[0].Fields.String("industry"))
	assert.Equal(t, "Globex", inserted[1].Fields.String("companyname"))
	assert.Equal(t, "Visayas", inserted[1].Fields.String("area"))
	assert.Equal(t, "", inserted[1].Fields.String("industry"))

	saved := history.Calls[len(history.Calls)-1].Arguments.Get(1).(*bulk.ImportHistory)
	assert.Equal(t, bulk.ImportStatusCompleted, saved.Status)
	assert.Equal(t, 2, saved.InsertedRows)
	assert.Equal(t, result.HistoryID, saved.ID.String())
}

func TestMapRows_KeepsEmptyCells(t *testing.T) {
	schema := record.MustLookup(record.KindAccounts)
	sheet, err := spreadsheet.Read(strings.NewReader("Company,Contact\nAcme,\n,\nGlobex,Hank\n"), spreadsheet.FormatCSV)
	require.NoError(t, err)

	rows := MapRows(schema, sheet, map[string]string{"manager": "MG-0001"})
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme", rows[0].String(schema.ImportColumns[0]))
	for _, column := range schema.ImportColumns[1:] {
		v, ok := rows[0][column]
		assert.True(t, ok, column)
		assert.Equal(t, "", v, column)
	}
	assert.Equal(t, "Hank", rows[1].String(schema.ImportColumns[1]))
	assert.Equal(t, "MG-0001", rows[1].String("manager"))
}

func TestService_Import_WholeBatchFailure(t *testing.T) {
	repo := new(MockRecordRepository)
	history := new(MockImportHistoryRepository)
	svc := newImportService(repo, history, DefaultConfig())

	repo.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("duplicate key"))
	history.On("Save", mock.Anything, mock.Anything).Return(nil)

	file := accountsWorkbook(t, []any{"Acme"}, []any{"Globex"})
	_, err := svc.Import(context.Background(), adminSession(), record.KindAccounts, ImportInput{
		FileName: "accounts.xlsx", FileSize: int64(file.Len()), Body: file,
	})
	require.Error(t, err)

	saved := history.Calls[len(history.Calls)-1].Arguments.Get(1).(*bulk.ImportHistory)
	assert.Equal(t, bulk.ImportStatusFailed, saved.Status)
	assert.Equal(t, 0, saved.InsertedRows)
	assert.Equal(t, "duplicate key", saved.Message)
}

func TestService_Import_Rejections(t *testing.T) {
	repo := new(MockRecordRepository)
	history := new(MockImportHistoryRepository)
	history.On("Save", mock.Anything, mock.Anything).Return(nil)
	svc := newImportService(repo, history, Config{MaxFileSize: 64, MaxRows: 1})

	t.Run("unsupported file", func(t *testing.T) {
		_, err := svc.Import(context.Background(), adminSession(), record.KindAccounts, ImportInput{FileName: "a.pdf", Body: strings.NewReader("x")})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, spreadsheet.ErrCodeImportInvalidFile, de.Code)
	})

	t.Run("constant not allowed", func(t *testing.T) {
		_, err := svc.Import(context.Background(), adminSession(), record.KindInventory, ImportInput{
			FileName: "a.csv", Body: strings.NewReader("x"), Constants: map[string]string{"manager": "MG-1"},
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := svc.Import(context.Background(), adminSession(), record.KindAccounts, ImportInput{
			FileName: "a.csv", Body: strings.NewReader(strings.Repeat("x", 100)),
		})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, spreadsheet.ErrCodeImportFileTooLarge, de.Code)
	})

	t.Run("too many rows", func(t *testing.T) {
		_, err := svc.Import(context.Background(), adminSession(), record.KindAccounts, ImportInput{
			FileName: "a.csv", Body: strings.NewReader("h\nA\nB\n"),
		})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, spreadsheet.ErrCodeImportTooManyRows, de.Code)
	})

	repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestExportService_Export(t *testing.T) {
	repo := new(MockRecordRepository)
	records := recordapp.NewService(repo, zap.NewNop())
	svc := NewExportService(records, zap.NewNop())

	all := []*record.Record{
		record.NewRecord(record.KindAccounts, record.Fields{"companyname": "Acme", "quota": 1500.0, "status": "Active"}, fixedNow),
		record.NewRecord(record.KindAccounts, record.Fields{"companyname": "Globex", "status": "Inactive"}, fixedNow),
		record.NewRecord(record.KindAccounts, record.Fields{"companyname": "Initech", "status": "Active"}, fixedNow),
	}
	repo.On("FindAll", mock.Anything, record.KindAccounts).Return(all, nil)

	q := recordapp.ListQuery{Page: 1, PageSize: 1}
	q.Filter.Enums = map[string][]string{"status": {"Active"}}
	file, err := svc.Export(context.Background(), adminSession(), record.KindAccounts, q, "")
	require.NoError(t, err)
	assert.Equal(t, "accounts.xlsx", file.FileName)
	assert.Equal(t, 2, file.Rows, "export ignores paging")

	sheet, err := spreadsheet.Read(bytes.NewReader(file.Data), spreadsheet.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "Company Name", sheet.Header[0])
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Acme", sheet.Cell(0, 0))
	assert.Equal(t, "1500", sheet.Cell(0, 9))
	assert.Equal(t, "Initech", sheet.Cell(1, 0))
}

func TestImportHistoryService_ListHistory(t *testing.T) {
	repo := new(MockImportHistoryRepository)
	svc := NewImportHistoryService(repo)

	agent := identity.Session{Username: "jg", ReferenceID: "JG-1234", Role: identity.RoleTerritorySalesAssociate}
	repo.On("FindAll", mock.Anything, bulk.ImportHistoryFilter{Kind: record.KindTickets, ImportedBy: "jg"}, 1, 20).
		Return([]*bulk.ImportHistory{}, int64(0), nil)

	page, err := svc.ListHistory(context.Background(), agent, ListHistoryFilter{Kind: "tickets"}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)

	_, err = svc.ListHistory(context.Background(), agent, ListHistoryFilter{Status: "exploded"}, 1, 20)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	repo.AssertExpectations(t)
}

func TestImportHistoryService_FailStale(t *testing.T) {
	repo := new(MockImportHistoryRepository)
	svc := NewImportHistoryService(repo)

	stuck, err := bulk.NewImportHistory(record.KindTickets, "tickets.csv", 10, "jg")
	require.NoError(t, err)
	require.NoError(t, stuck.StartProcessing(5))
	pending, err := bulk.NewImportHistory(record.KindAccounts, "accounts.csv", 10, "jg")
	require.NoError(t, err)

	repo.On("FindUnfinished", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]*bulk.ImportHistory{stuck, pending}, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*bulk.ImportHistory")).Return(nil).Twice()

	n, err := svc.FailStale(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, bulk.ImportStatusFailed, stuck.Status)
	assert.Equal(t, bulk.ImportStatusFailed, pending.Status)
	assert.NotEmpty(t, stuck.Message)
	repo.AssertExpectations(t)
}
