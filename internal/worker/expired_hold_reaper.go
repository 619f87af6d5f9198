package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	redisinfra "github.com/sanosuguru/go-cinema-seat-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/logger"
)

const reaperLockKey = "reaper:expired-holds"

// HoldReleaser は期限切れの仮押さえを解放するインターフェース
type HoldReleaser interface {
	ReleaseExpired(ctx context.Context, now time.Time) (int, error)
}

// Locker は複数レプリカのうち1台だけが掃引するためのリース
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}

// ExpiredHoldReaper は期限切れの仮押さえを定期的に回収するワーカー
type ExpiredHoldReaper struct {
	releaser HoldReleaser
	locker   Locker
	interval time.Duration
	lockTTL  time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewExpiredHoldReaper は新しいワーカーを作成
// locker が nil の場合はロックなしで掃引する（単一プロセス構成）
func NewExpiredHoldReaper(r HoldReleaser, locker Locker, interval, lockTTL time.Duration) *ExpiredHoldReaper {
	return &ExpiredHoldReaper{
		releaser: r,
		locker:   locker,
		interval: interval,
		lockTTL:  lockTTL,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はワーカーを開始
func (w *ExpiredHoldReaper) Start(ctx context.Context) {
	logger.Info("期限切れ仮押さえ回収ワーカー開始",
		zap.Duration("interval", w.interval),
		zap.Bool("distributed_lock", w.locker != nil),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れ仮押さえ回収ワーカー停止（コンテキストキャンセル）")
			return
		case <-w.stopCh:
			logger.Info("期限切れ仮押さえ回収ワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Stop はワーカーを停止
func (w *ExpiredHoldReaper) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

// sweep は1回分の回収を行う
func (w *ExpiredHoldReaper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れ仮押さえの回収開始")

	run := func(ctx context.Context) error {
		count, err := w.releaser.ReleaseExpired(ctx, w.now())
		if err != nil {
			return err
		}
		if count > 0 {
			log.Info("期限切れ仮押さえを解放", zap.Int("count", count))
		} else {
			log.Debug("期限切れ仮押さえなし")
		}
		return nil
	}

	var err error
	if w.locker != nil {
		err = w.locker.WithLock(ctx, reaperLockKey, w.lockTTL, run)
	} else {
		err = run(ctx)
	}

	switch {
	case err == nil:
	case errors.Is(err, redisinfra.ErrLockNotAcquired):
		log.Debug("他のプロセスが回収中のためスキップ")
	default:
		log.Error("期限切れ仮押さえの回収失敗", zap.Error(err))
	}
}
