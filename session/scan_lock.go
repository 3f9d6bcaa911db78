// session/scan_lock.go
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// ErrScanInProgress means another request is processing a scan for the same id.
var ErrScanInProgress = errors.New("scan already in progress for this id")

// Unlock releases a lock taken by a Locker.
type Unlock func(ctx context.Context) error

type Locker interface {
	Lock(ctx context.Context, id string) (Unlock, error)
}

// ScanLock serialises scans per badge id across kiosk instances.
type ScanLock struct {
	rs  *redsync.Redsync
	ttl time.Duration
}

func NewScanLock(rdb *redis.Client, ttl time.Duration) *ScanLock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &ScanLock{rs: redsync.New(goredis.NewPool(rdb)), ttl: ttl}
}

func lockKey(id string) string { return fmt.Sprintf("kiosk:scan:lock:%s", id) }

// Lock tries once. A held lock yields ErrScanInProgress.
func (l *ScanLock) Lock(ctx context.Context, id string) (Unlock, error) {
	m := l.rs.NewMutex(lockKey(id), redsync.WithExpiry(l.ttl), redsync.WithTries(1))
	if err := m.LockContext(ctx); err != nil {
		if isContention(err) {
			return nil, ErrScanInProgress
		}
		return nil, fmt.Errorf("acquire scan lock: %w", err)
	}
	return func(ctx context.Context) error {
		ok, err := m.UnlockContext(ctx)
		if err != nil {
			return fmt.Errorf("release scan lock: %w", err)
		}
		if !ok {
			return errors.New("scan lock expired before release")
		}
		return nil
	}, nil
}

// isContention reports whether redsync failed because someone else holds the lock.
func isContention(err error) bool {
	var taken *redsync.ErrTaken
	return errors.As(err, &taken) || errors.Is(err, redsync.ErrFailed)
}

// NopLocker is used when Redis is not configured.
type NopLocker struct{}

func (NopLocker) Lock(context.Context, string) (Unlock, error) {
	return func(context.Context) error { return nil }, nil
}
