package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RevocationPruner drops expired token revocations
type RevocationPruner interface {
	Prune(ctx context.Context) (int, error)
}

// StaleImportFailer fails imports abandoned mid-flight
type StaleImportFailer interface {
	FailStale(ctx context.Context, maxAge time.Duration) (int, error)
}

// PruneRevocations returns a task that trims the in-process revocation list
func PruneRevocations(pruner RevocationPruner, logger *zap.Logger) Task {
	return TaskFunc("prune_revocations", func(ctx context.Context) error {
		n, err := pruner.Prune(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("Pruned expired token revocations", zap.Int("count", n))
		}
		return nil
	})
}

// FailStaleImports returns a task that closes imports stuck for longer than maxAge
func FailStaleImports(failer StaleImportFailer, maxAge time.Duration, logger *zap.Logger) Task {
	return TaskFunc("fail_stale_imports", func(ctx context.Context) error {
		n, err := failer.FailStale(ctx, maxAge)
		if n > 0 {
			logger.Warn("Marked stale imports as failed",
				zap.Int("count", n),
				zap.Duration("max_age", maxAge),
			)
		}
		return err
	})
}
