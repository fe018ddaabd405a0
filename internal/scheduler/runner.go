package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// 1回分の処理。now はテストで固定できるように外から渡す
type Task func(ctx context.Context, now time.Time) error

type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

// Runner は一定間隔で Task を動かす。
// Locker でロックが取れなかった回（他のレプリカが実行中）は飛ばす
type Runner struct {
	name     string
	interval time.Duration
	lockTTL  time.Duration
	task     Task
	locker   Locker
	now      func() time.Time
	log      zerolog.Logger
}

type Option func(*Runner)

func WithLocker(l Locker, ttl time.Duration) Option {
	return func(r *Runner) {
		r.locker = l
		r.lockTTL = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func NewRunner(name string, interval time.Duration, task Task, log zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		name:     name,
		interval: interval,
		lockTTL:  interval,
		task:     task,
		now:      time.Now,
		log:      log.With().Str("task", name).Logger(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ctx が終わるまで回す。起動直後に1回実行する
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info().Dur("interval", r.interval).Msg("scheduler started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("scheduler stopped")
			return nil
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// 1回だけ実行する。実行したら true
func (r *Runner) RunOnce(ctx context.Context) bool {
	if r.locker != nil {
		unlock, ok, err := r.locker.TryLock(ctx, r.name, r.lockTTL)
		if err != nil {
			r.log.Error().Err(err).Msg("acquire lock")
			return false
		}
		if !ok {
			r.log.Debug().Msg("lock held elsewhere, skipping run")
			return false
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				r.log.Warn().Err(err).Msg("release lock")
			}
		}()
	}

	start := r.now()
	if err := r.task(ctx, start); err != nil {
		r.log.Error().Err(err).Msg("run failed")
		return true
	}
	r.log.Debug().Dur("elapsed", r.now().Sub(start)).Msg("run finished")
	return true
}
