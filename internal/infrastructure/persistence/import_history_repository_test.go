package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/bulk"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormImportHistoryRepository(t *testing.T) {
	repo := NewGormImportHistoryRepository(setupTestDB(t))
	ctx := context.Background()

	done, err := bulk.NewImportHistory(record.KindAccounts, "accounts.xlsx", 2048, "JG-1")
	require.NoError(t, err)
	done.Constants = map[string]string{"manager": "MR-1", "quota": "500000"}
	require.NoError(t, done.StartProcessing(3))
	require.NoError(t, done.Complete(3))
	require.NoError(t, repo.Save(ctx, done))

	failed, err := bulk.NewImportHistory(record.KindTickets, "tickets.xlsx", 512, "MR-1")
	require.NoError(t, err)
	require.NoError(t, failed.StartProcessing(10))
	require.NoError(t, failed.Fail("duplicate key"))
	require.NoError(t, repo.Save(ctx, failed))

	t.Run("find by id round-trips constants", func(t *testing.T) {
		found, err := repo.FindByID(ctx, done.ID)
		require.NoError(t, err)
		assert.Equal(t, bulk.ImportStatusCompleted, found.Status)
		assert.Equal(t, 3, found.InsertedRows)
		assert.Equal(t, "MR-1", found.Constants["manager"])
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("filter and count", func(t *testing.T) {
		items, total, err := repo.FindAll(ctx, bulk.ImportHistoryFilter{Status: bulk.ImportStatusFailed}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, "duplicate key", items[0].Message)

		items, total, err = repo.FindAll(ctx, bulk.ImportHistoryFilter{}, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, items, 1)
	})

	t.Run("unfinished imports older than the cutoff", func(t *testing.T) {
		stuck, err := bulk.NewImportHistory(record.KindProjects, "projects.csv", 64, "JG-1")
		require.NoError(t, err)
		require.NoError(t, stuck.StartProcessing(4))
		stuck.CreatedAt = time.Now().Add(-2 * time.Hour)
		require.NoError(t, repo.Save(ctx, stuck))

		fresh, err := bulk.NewImportHistory(record.KindProjects, "fresh.csv", 64, "JG-1")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, fresh))

		items, err := repo.FindUnfinished(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, stuck.ID, items[0].ID)
		assert.Equal(t, bulk.ImportStatusProcessing, items[0].Status)
	})
}
