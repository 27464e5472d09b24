package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPruner struct {
	mock.Mock
}

func (m *mockPruner) Prune(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockFailer struct {
	mock.Mock
}

func (m *mockFailer) FailStale(ctx context.Context, maxAge time.Duration) (int, error) {
	args := m.Called(ctx, maxAge)
	return args.Int(0), args.Error(1)
}

func TestNewScheduler_RejectsZeroInterval(t *testing.T) {
	_, err := NewScheduler(Config{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestScheduler_RunOnce(t *testing.T) {
	s, err := NewScheduler(DefaultConfig(), zap.NewNop())
	require.NoError(t, err)

	pruner := new(mockPruner)
	pruner.On("Prune", mock.Anything).Return(3, nil).Once()
	failer := new(mockFailer)
	failer.On("FailStale", mock.Anything, 30*time.Minute).Return(1, errors.New("db down")).Once()

	var ran atomic.Int32
	require.NoError(t, s.Register(TaskFunc("panics", func(context.Context) error { panic("boom") })))
	require.NoError(t, s.Register(PruneRevocations(pruner, zap.NewNop())))
	require.NoError(t, s.Register(FailStaleImports(failer, 30*time.Minute, zap.NewNop())))
	require.NoError(t, s.Register(TaskFunc("count", func(context.Context) error {
		ran.Add(1)
		return nil
	})))

	failed := s.RunOnce(context.Background())
	assert.Equal(t, 2, failed, "a panic and an error are both counted")
	assert.Equal(t, int32(1), ran.Load(), "later tasks still run")
	pruner.AssertExpectations(t)
	failer.AssertExpectations(t)
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := NewScheduler(Config{Interval: 10 * time.Millisecond}, zap.NewNop())
	require.NoError(t, err)

	ticks := make(chan struct{}, 10)
	require.NoError(t, s.Register(TaskFunc("tick", func(context.Context) error {
		select {
		case ticks <- struct{}{}:
		default:
		}
		return nil
	})))

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Register(TaskFunc("late", func(context.Context) error { return nil })), ErrSchedulerRunning)

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx), "stopping twice is a no-op")
}
