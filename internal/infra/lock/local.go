package lock

import (
	"context"
	"sync"
	"time"
)

// 1プロセス内だけのロック。Redis が無いとき用
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: map[string]time.Time{}, now: time.Now}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return nil, false, nil
	}
	until := now.Add(ttl)
	l.held[key] = until

	unlock := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		//期限切れ後に別の持ち主が取っていたら消さない
		if cur, ok := l.held[key]; ok && cur.Equal(until) {
			delete(l.held, key)
		}
		return nil
	}
	return unlock, true, nil
}
