package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisLocker implements DocumentLocker on redis SET NX, for
// deployments running more than one server instance against the same
// database.
type RedisLocker struct {
	client    *redis.Client
	keyPrefix string
	// token distinguishes this instance's locks so a release never
	// deletes a lock re-acquired elsewhere after expiry
	token string
}

// RedisConfig holds redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// releaseScript deletes the key only if it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// NewRedisLocker connects to redis and verifies the connection
func NewRedisLocker(cfg RedisConfig) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisLocker{
		client:    client,
		keyPrefix: "document:lock:",
		token:     uuid.NewString(),
	}, nil
}

// NewRedisLockerWithClient wraps an existing client (useful for tests)
func NewRedisLockerWithClient(client *redis.Client, keyPrefix string) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = "document:lock:"
	}
	return &RedisLocker{
		client:    client,
		keyPrefix: keyPrefix,
		token:     uuid.NewString(),
	}
}

// TryAcquire takes the lock with SET NX; a held key means another
// request is mid-flight on the same document
func (l *RedisLocker) TryAcquire(ctx context.Context, documentID uuid.UUID, ttl time.Duration) (bool, func(), error) {
	key := l.keyPrefix + documentID.String()

	acquired, err := l.client.SetNX(ctx, key, l.token, ttl).Result()
	if err != nil {
		return false, nil, fmt.Errorf("failed to acquire document lock: %w", err)
	}
	if !acquired {
		return false, nil, nil
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, l.token).Err()
	}
	return true, release, nil
}

// Close closes the underlying redis client
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

var _ shared.DocumentLocker = (*RedisLocker)(nil)
