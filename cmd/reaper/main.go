// reaper は期限切れの仮押さえを1回だけ回収して終了する（cron などから起動する）
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/application"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/config"
	redisinfra "github.com/sanosuguru/go-cinema-seat-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/infrastructure/storage"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/metrics"
)

const reaperLockKey = "reaper:expired-holds"

func main() {
	cfg := config.Load()

	logger.Set(logger.NewLoggerWithFile(cfg.Log.Env, cfg.Log.File))
	defer logger.Sync()

	count, err := run(cfg)
	if errors.Is(err, redisinfra.ErrLockNotAcquired) {
		logger.Info("他のプロセスが回収中のため終了します")
		return
	}
	if err != nil {
		logger.Error("期限切れ仮押さえの回収に失敗しました", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	fmt.Printf("Released %d expired seat holds\n", count)
}

func run(cfg *config.Config) (int, error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	var (
		cache application.SeatCache
		locks *redisinfra.LockManager
	)
	if cfg.Redis.Enabled {
		client, err := redisinfra.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn("Redisに接続できないため、ロックなしで回収します", zap.Error(err))
		} else {
			defer client.Close()
			cache = redisinfra.NewSeatCache(client)
			locks = redisinfra.NewLockManager(client, metrics.Get())
		}
	}

	reaper := application.NewExpiryReaper(store.Seats, cache, cfg.Reservation.ReaperBatchSize)

	var count int
	sweep := func(ctx context.Context) error {
		n, err := reaper.ReleaseExpired(ctx, time.Now())
		count = n
		return err
	}
	if locks != nil {
		err = locks.WithLock(ctx, reaperLockKey, cfg.Reservation.ReaperLockTTL, sweep)
	} else {
		err = sweep(ctx)
	}
	return count, err
}
