package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/salesdesk/backend/internal/domain/preference"
	"github.com/salesdesk/backend/internal/infrastructure/auth"
	"github.com/salesdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory picks Redis-backed stores when Redis is enabled and reachable and
// in-memory ones otherwise.
type Factory struct {
	cfg                   config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	client                *redis.Client
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// in-memory stores. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{cfg: cfg, logger: zap.NewNop(), allowInMemoryFallback: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Connect dials Redis when it is enabled. With fallback allowed a failed
// dial is logged and the factory serves in-memory stores.
func (f *Factory) Connect(ctx context.Context) error {
	if !f.cfg.Enabled {
		f.logger.Info("Redis disabled, using in-memory stores")
		return nil
	}
	client, err := NewRedisClient(ctx, f.cfg)
	if err != nil {
		if !f.allowInMemoryFallback {
			return fmt.Errorf("redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Preferences and logouts will not be shared between instances.",
			zap.Error(err),
		)
		return nil
	}
	f.client = client
	f.logger.Info("Connected to Redis", zap.String("host", f.cfg.Host), zap.Int("port", f.cfg.Port))
	return nil
}

// PreferenceStore returns the preference store
func (f *Factory) PreferenceStore() preference.Store {
	if f.client != nil {
		return NewRedisPreferenceStore(f.client, f.cfg.KeyPrefix)
	}
	return NewInMemoryPreferenceStore()
}

// RevocationList returns the token revocation list
func (f *Factory) RevocationList() auth.RevocationList {
	if f.client != nil {
		return auth.NewRedisRevocationList(f.client, f.cfg.KeyPrefix)
	}
	return auth.NewInMemoryRevocationList()
}

// Ping checks Redis; it is a no-op without a connection.
func (f *Factory) Ping(ctx context.Context) error {
	if f.client == nil {
		return nil
	}
	return f.client.Ping(ctx).Err()
}

// Close releases the Redis connection
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
