package bulk

import (
	"testing"

	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImportHistory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		h, err := NewImportHistory(record.KindAccounts, "accounts.xlsx", 2048, "JG-1234")
		require.NoError(t, err)
		assert.Equal(t, ImportStatusPending, h.Status)
		assert.Equal(t, "JG-1234", h.ImportedBy)
		assert.NotNil(t, h.Constants)
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := NewImportHistory(record.Kind("invoices"), "a.xlsx", 1, "x")
		assert.Error(t, err)
	})

	t.Run("empty file name", func(t *testing.T) {
		_, err := NewImportHistory(record.KindAccounts, "", 1, "x")
		assert.Error(t, err)
	})

	t.Run("negative size", func(t *testing.T) {
		_, err := NewImportHistory(record.KindAccounts, "a.xlsx", -1, "x")
		assert.Error(t, err)
	})
}

func TestImportHistory_Lifecycle(t *testing.T) {
	h, err := NewImportHistory(record.KindTickets, "tickets.xlsx", 10, "JG-1234")
	require.NoError(t, err)

	require.Error(t, h.Complete(1), "cannot complete before processing")

	require.NoError(t, h.StartProcessing(2))
	assert.Equal(t, ImportStatusProcessing, h.Status)
	assert.NotNil(t, h.StartedAt)
	require.Error(t, h.StartProcessing(2))

	require.NoError(t, h.Complete(2))
	assert.Equal(t, ImportStatusCompleted, h.Status)
	assert.Equal(t, 2, h.InsertedRows)
	assert.GreaterOrEqual(t, h.Duration().Nanoseconds(), int64(0))

	assert.Error(t, h.Fail("late"), "terminal")
}

func TestImportHistory_Fail(t *testing.T) {
	h, err := NewImportHistory(record.KindTickets, "tickets.xlsx", 10, "JG-1234")
	require.NoError(t, err)
	require.NoError(t, h.StartProcessing(3))

	require.NoError(t, h.Fail("batch insert rejected"))
	assert.Equal(t, ImportStatusFailed, h.Status)
	assert.Equal(t, 0, h.InsertedRows)
	assert.Equal(t, "batch insert rejected", h.Message)
	assert.True(t, h.Status.IsTerminal())
	assert.True(t, h.Status.IsValid())
	assert.False(t, ImportStatus("x").IsValid())
}
