package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DocumentLocker serializes workflow operations per document. TryAcquire
// never blocks: a busy document is reported immediately so the caller
// can surface CONCURRENT_MODIFICATION instead of queueing.
type DocumentLocker interface {
	// TryAcquire attempts to take the lock for a document. It returns
	// true with a release function on success, false when the lock is
	// already held elsewhere.
	TryAcquire(ctx context.Context, documentID uuid.UUID, ttl time.Duration) (bool, func(), error)
	Close() error
}
