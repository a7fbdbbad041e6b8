package locks

import (
	"fmt"

	"github.com/procure/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Mode selects the locker implementation
type Mode string

const (
	ModeMemory Mode = "memory"
	ModeRedis  Mode = "redis"
)

// Factory creates document lockers based on configuration
type Factory struct {
	redisConfig RedisConfig
	logger      *zap.Logger
}

// NewFactory creates a locker factory
func NewFactory(redisConfig RedisConfig, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{redisConfig: redisConfig, logger: logger}
}

// Create builds the locker for the configured mode. Memory is the
// default for single-instance deployments; redis is required when more
// than one instance shares the database.
func (f *Factory) Create(mode Mode) (shared.DocumentLocker, error) {
	switch mode {
	case ModeMemory, "":
		f.logger.Info("Using in-memory document locker")
		return NewMemoryLocker(), nil
	case ModeRedis:
		locker, err := NewRedisLocker(f.redisConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis locker: %w", err)
		}
		f.logger.Info("Using redis document locker",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port),
		)
		return locker, nil
	default:
		return nil, fmt.Errorf("unknown lock mode %q", mode)
	}
}
