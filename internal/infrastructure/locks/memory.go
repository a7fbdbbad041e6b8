package locks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/shared"
)

type memoryEntry struct {
	expiresAt time.Time
}

// MemoryLocker implements DocumentLocker with an in-process map.
// Suitable for single-instance deployments and testing. Entries carry a
// TTL so a crashed request cannot strand a document forever.
type MemoryLocker struct {
	mu        sync.Mutex
	held      map[uuid.UUID]memoryEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryLocker creates an in-process document locker. It starts a
// background goroutine that sweeps expired entries.
func NewMemoryLocker() *MemoryLocker {
	l := &MemoryLocker{
		held:     make(map[uuid.UUID]memoryEntry),
		stopChan: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.sweepLoop()
	return l
}

// TryAcquire takes the lock for a document if it is free or its holder
// expired. Release is idempotent.
func (l *MemoryLocker) TryAcquire(ctx context.Context, documentID uuid.UUID, ttl time.Duration) (bool, func(), error) {
	if err := ctx.Err(); err != nil {
		return false, nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e, exists := l.held[documentID]; exists && time.Now().Before(e.expiresAt) {
		return false, nil, nil
	}
	l.held[documentID] = memoryEntry{expiresAt: time.Now().Add(ttl)}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, documentID)
			l.mu.Unlock()
		})
	}
	return true, release, nil
}

// Close stops the sweep goroutine. Safe to call multiple times.
func (l *MemoryLocker) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *MemoryLocker) sweepLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *MemoryLocker) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for id, e := range l.held {
		if now.After(e.expiresAt) {
			delete(l.held, id)
		}
	}
}

// Size returns the number of held locks (for testing/monitoring)
func (l *MemoryLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

var _ shared.DocumentLocker = (*MemoryLocker)(nil)
