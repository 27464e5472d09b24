package record

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/listview"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func idsOf(records []*record.Record) ([]string, []uuid.UUID) {
	raw := make([]string, len(records))
	ids := make([]uuid.UUID, len(records))
	for i, r := range records {
		raw[i] = r.ID.String()
		ids[i] = r.ID
	}
	return raw, ids
}

func TestBulkService_Delete(t *testing.T) {
	repo := new(MockRecordRepository)
	bulk := NewBulkService(repo, newTestService(repo), zap.NewNop())

	all := seedTickets(10, func(int) string { return "JG-1234" })
	selected := all[2:5]
	raw, ids := idsOf(selected)

	repo.On("FindByIDs", mock.Anything, record.KindTickets, ids).Return(selected, nil)
	repo.On("DeleteBatch", mock.Anything, record.KindTickets, ids).Return(int64(3), nil)

	result, err := bulk.Execute(context.Background(), tsaSession("JG-1234"), record.KindTickets, listview.BulkDelete, BulkInput{IDs: append(raw, raw[0])})
	require.NoError(t, err)
	assert.Equal(t, "delete", result.Mode)
	assert.Equal(t, raw, result.Affected)
	assert.Empty(t, result.Records)
	repo.AssertExpectations(t)
}

func TestBulkService_RejectsInvisible(t *testing.T) {
	repo := new(MockRecordRepository)
	bulk := NewBulkService(repo, newTestService(repo), zap.NewNop())

	mine := seedTickets(2, func(int) string { return "JG-1234" })
	theirs := seedTickets(1, func(int) string { return "ZZ-9999" })
	selected := append(mine, theirs...)
	raw, ids := idsOf(selected)
	repo.On("FindByIDs", mock.Anything, record.KindTickets, ids).Return(selected, nil)

	_, err := bulk.Execute(context.Background(), tsaSession("JG-1234"), record.KindTickets, listview.BulkDelete, BulkInput{IDs: raw})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	repo.AssertNotCalled(t, "DeleteBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestBulkService_MissingRecords(t *testing.T) {
	repo := new(MockRecordRepository)
	bulk := NewBulkService(repo, newTestService(repo), zap.NewNop())

	found := seedTickets(1, func(int) string { return "JG-1234" })
	raw := []string{found[0].ID.String(), uuid.NewString()}
	repo.On("FindByIDs", mock.Anything, record.KindTickets, mock.Anything).Return(found, nil)

	_, err := bulk.Execute(context.Background(), adminSession(), record.KindTickets, listview.BulkStatusChange, BulkInput{IDs: raw, Value: "Closed"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBulkService_Updates(t *testing.T) {
	tests := []struct {
		name  string
		mode  listview.BulkMode
		input BulkInput
		field string
		want  string
	}{
		{name: "status", mode: listview.BulkStatusChange, input: BulkInput{Value: "Closed"}, field: "Status", want: "Closed"},
		{name: "edit", mode: listview.BulkEdit, input: BulkInput{Field: "department", Value: "Technical"}, field: "department", want: "Technical"},
		{name: "transfer manager", mode: listview.BulkTransferManager, input: BulkInput{Value: "MG-0002"}, field: "manager", want: "MG-0002"},
		{name: "transfer agent", mode: listview.BulkTransferAgent, input: BulkInput{Value: "AB-0003"}, field: "referenceid", want: "AB-0003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRecordRepository)
			bulk := NewBulkService(repo, newTestService(repo), zap.NewNop())

			selected := seedTickets(3, func(int) string { return "JG-1234" })
			raw, ids := idsOf(selected)
			repo.On("FindByIDs", mock.Anything, record.KindTickets, ids).Return(selected, nil)
			repo.On("UpdateBatch", mock.Anything, selected).Return(nil)

			in := tt.input
			in.IDs = raw
			result, err := bulk.Execute(context.Background(), adminSession(), record.KindTickets, tt.mode, in)
			require.NoError(t, err)
			require.Len(t, result.Records, 3)
			for _, r := range result.Records {
				assert.Equal(t, tt.want, r.Fields.String(tt.field))
			}
			if tt.mode == listview.BulkTransferAgent {
				assert.Equal(t, "AB-0003", selected[0].OwnerRef)
			}
		})
	}
}

func TestBulkService_InvalidInput(t *testing.T) {
	repo := new(MockRecordRepository)
	bulk := NewBulkService(repo, newTestService(repo), zap.NewNop())
	id := uuid.NewString()

	cases := []struct {
		name  string
		mode  listview.BulkMode
		input BulkInput
	}{
		{name: "no mode", mode: listview.BulkNone, input: BulkInput{IDs: []string{id}}},
		{name: "empty selection", mode: listview.BulkDelete},
		{name: "bad id", mode: listview.BulkDelete, input: BulkInput{IDs: []string{"nope"}}},
		{name: "bad status", mode: listview.BulkStatusChange, input: BulkInput{IDs: []string{id}, Value: "Lost"}},
		{name: "field not editable", mode: listview.BulkEdit, input: BulkInput{IDs: []string{id}, Field: "companyname", Value: "X"}},
		{name: "no transfer target", mode: listview.BulkTransferAgent, input: BulkInput{IDs: []string{id}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := bulk.Execute(context.Background(), adminSession(), record.KindTickets, tc.mode, tc.input)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		})
	}
	repo.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything, mock.Anything)
}

func TestBulkService_StatusChangeForwards(t *testing.T) {
	repo := new(MockRecordRepository)
	fwd := new(MockForwarder)
	bulk := NewBulkService(repo, newTestService(repo, WithForwarder(fwd)), zap.NewNop())

	selected := seedTickets(3, func(int) string { return "JG-1234" })
	selected[0].Patch(record.MustLookup(record.KindTickets), map[string]any{"Status": "Endorsed"}, fixedNow)
	raw, ids := idsOf(selected)
	repo.On("FindByIDs", mock.Anything, record.KindTickets, ids).Return(selected, nil)
	repo.On("UpdateBatch", mock.Anything, selected).Return(nil)
	fwd.On("Forward", mock.Anything, selected[1]).Return(nil)
	fwd.On("Forward", mock.Anything, selected[2]).Return(errors.New("connection refused"))

	result, err := bulk.Execute(context.Background(), adminSession(), record.KindTickets, listview.BulkStatusChange, BulkInput{IDs: raw, Value: "Endorsed"})
	require.NoError(t, err)
	assert.Equal(t, []string{raw[1]}, result.Forwarded)
	assert.Equal(t, []string{raw[2]}, result.ForwardFailed)
	fwd.AssertNumberOfCalls(t, "Forward", 2)
	fwd.AssertNotCalled(t, "Forward", mock.Anything, selected[0])
}

func TestBulkService_EditSkipsForward(t *testing.T) {
	repo := new(MockRecordRepository)
	fwd := new(MockForwarder)
	bulk := NewBulkService(repo, newTestService(repo, WithForwarder(fwd)), zap.NewNop())

	selected := seedTickets(2, func(int) string { return "JG-1234" })
	raw, ids := idsOf(selected)
	repo.On("FindByIDs", mock.Anything, record.KindTickets, ids).Return(selected, nil)
	repo.On("UpdateBatch", mock.Anything, selected).Return(nil)

	result, err := bulk.Execute(context.Background(), adminSession(), record.KindTickets, listview.BulkEdit, BulkInput{IDs: raw, Field: "remarks", Value: "Inquiry"})
	require.NoError(t, err)
	assert.Empty(t, result.Forwarded)
	fwd.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything)
}
