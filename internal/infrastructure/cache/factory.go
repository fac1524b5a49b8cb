package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bioinsight/backend/internal/domain/ledger"
	"github.com/bioinsight/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SummaryStore is what the factory hands out: a summary cache that owns resources.
type SummaryStore interface {
	Get(ctx context.Context, key string) (*ledger.Summary, bool, error)
	Set(ctx context.Context, key string, summary *ledger.Summary, ttl time.Duration) error
	Close() error
}

// SummaryCacheFactory creates summary caches based on configuration
type SummaryCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SummaryCacheFactoryOption configures the factory.
type SummaryCacheFactoryOption func(*SummaryCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SummaryCacheFactoryOption {
	return func(f *SummaryCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory cache. Default true.
func WithInMemoryFallback(allow bool) SummaryCacheFactoryOption {
	return func(f *SummaryCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSummaryCacheFactory creates a new factory
func NewSummaryCacheFactory(cfg config.RedisConfig, opts ...SummaryCacheFactoryOption) *SummaryCacheFactory {
	f := &SummaryCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the cache for backend ("memory" or "redis").
func (f *SummaryCacheFactory) Create(ctx context.Context, backend string) (SummaryStore, error) {
	switch backend {
	case "memory":
		f.logger.Info("using in-memory summary cache")
		return NewInMemorySummaryCache(time.Minute), nil
	case "redis":
		store, err := NewRedisSummaryCache(ctx, RedisOptions{
			Addr:     f.redisConfig.Addr(),
			Password: f.redisConfig.Password,
			DB:       f.redisConfig.DB,
		})
		if err == nil {
			f.logger.Info("using Redis summary cache", zap.String("addr", f.redisConfig.Addr()))
			return store, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis summary cache unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory summary cache. "+
			"Summaries will not be shared between instances.",
			zap.Error(err),
		)
		return NewInMemorySummaryCache(time.Minute), nil
	default:
		return nil, fmt.Errorf("unknown summary cache backend %q", backend)
	}
}
