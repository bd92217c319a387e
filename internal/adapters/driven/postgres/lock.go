package postgres

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*AdvisoryLock)(nil)

// AdvisoryLock implements DistributedLock with PostgreSQL advisory
// locks, as the fallback when Redis is not configured.
//
// Advisory locks are connection-scoped, not TTL-based: a lost
// connection releases the lock, the TTL parameter is ignored, and
// Extend is a no-op. Redis locks are preferred for multi-worker
// deployments.
type AdvisoryLock struct {
	db *DB
}

// NewAdvisoryLock creates a PostgreSQL advisory lock adapter.
func NewAdvisoryLock(db *DB) *AdvisoryLock {
	return &AdvisoryLock{db: db}
}

// hashLockName maps a lock name onto the 64-bit key space advisory
// locks use. FNV-1a keeps values well distributed.
func hashLockName(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte("markprompt:lock:" + name))
	return int64(h.Sum64())
}

// Acquire attempts to take the lock without blocking. The TTL is
// ignored; the lock holds until released or the connection closes.
func (l *AdvisoryLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	lockID := hashLockName(name)

	var acquired bool
	err := l.db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired)
	if err != nil {
		return false, err
	}
	return acquired, nil
}

// Release releases the lock. Releasing a lock that is not held is not
// an error.
func (l *AdvisoryLock) Release(ctx context.Context, name string) error {
	lockID := hashLockName(name)

	var released bool
	return l.db.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", lockID).Scan(&released)
}

// Extend is a no-op: advisory locks have no TTL to extend.
func (l *AdvisoryLock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	return nil
}

// Ping checks if the backend is healthy.
func (l *AdvisoryLock) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}
