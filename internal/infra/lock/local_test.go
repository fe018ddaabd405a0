package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_ExclusiveUntilUnlock(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	unlock, ok, err := l.TryLock(ctx, "expire-orders", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "expire-orders", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	//別のキーは独立
	_, ok, _ = l.TryLock(ctx, "other", time.Minute)
	assert.True(t, ok)

	require.NoError(t, unlock(ctx))
	_, ok, _ = l.TryLock(ctx, "expire-orders", time.Minute)
	assert.True(t, ok)
}

// TTL が過ぎたら取り直せる。古い持ち主の unlock は新しいロックを消さない
func TestLocalLocker_ExpiredLockIsTakenOver(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	l := NewLocalLocker()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	staleUnlock, ok, _ := l.TryLock(ctx, "expire-orders", time.Minute)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = l.TryLock(ctx, "expire-orders", time.Minute)
	require.True(t, ok)

	require.NoError(t, staleUnlock(ctx))
	_, ok, _ = l.TryLock(ctx, "expire-orders", time.Minute)
	assert.False(t, ok)
}
