// Package lock serialises writes that must check state before inserting.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
)

// ErrNotObtained is returned when the lock is still held by someone else
// once the caller's wait budget is spent
var ErrNotObtained = errors.New("lock not obtained")

// DefaultTTL bounds how long a crashed writer can hold a lock
const DefaultTTL = 10 * time.Second

// Locker hands out named exclusive locks
type Locker interface {
	// Obtain blocks until key is held or wait elapses. The returned func releases it.
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// GroupKey names the write lock of a group
func GroupKey(groupID int64) string {
	return fmt.Sprintf("lock:group:%d", groupID)
}

// RedisLocker implements Locker with bsm/redislock so that every API replica
// shares the same lock
type RedisLocker struct {
	client *redislock.Client
	wait   time.Duration
}

// NewRedisLocker creates a RedisLocker that retries for up to wait
func NewRedisLocker(client *redislock.Client, wait time.Duration) *RedisLocker {
	return &RedisLocker{client: client, wait: wait}
}

// Obtain implements Locker
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	lk, err := l.client.Obtain(waitCtx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(50 * time.Millisecond),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrNotObtained
		}
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	return func() {
		// A release after ttl expiry reports ErrLockNotHeld; the lock is gone either way.
		_ = lk.Release(context.WithoutCancel(ctx))
	}, nil
}

// LocalLocker implements Locker inside one process
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
	wait  time.Duration
}

// NewLocalLocker creates a LocalLocker that waits for up to wait
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{}), wait: wait}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Obtain implements Locker. ttl is ignored; the lock is held until released.
func (l *LocalLocker) Obtain(ctx context.Context, key string, _ time.Duration) (func(), error) {
	ch := l.slot(key)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
	case <-timer.C:
		return nil, ErrNotObtained
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}
