package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/api/handler"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/api/middleware"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/api/router"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/application"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/config"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-cinema-seat-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/infrastructure/storage"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	logger.Set(logger.NewLoggerWithFile(cfg.Log.Env, cfg.Log.File))
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Fatal("起動に失敗しました", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.Init()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// Redis はキャッシュと回収ワーカーのロックにのみ使う。接続できなくても起動は続ける
	var (
		cache     application.SeatCache
		locker    worker.Locker
		cachePing handler.Pinger
	)
	if cfg.Redis.Enabled {
		client, err := redisinfra.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn("Redisに接続できないため、キャッシュとロックなしで起動します", zap.Error(err))
		} else {
			defer client.Close()
			cache = redisinfra.NewSeatCache(client)
			locker = redisinfra.NewLockManager(client, m)
			cachePing = handler.PingFunc(func(ctx context.Context) error {
				return redisinfra.Ping(ctx, client)
			})
			logger.Info("Redis接続完了", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	var notifier application.Notifier
	if cfg.RabbitMQ.Enabled {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			logger.Warn("RabbitMQに接続できないため、予約確定通知なしで起動します", zap.Error(err))
		} else {
			defer publisher.Close()
			notifier = publisher
			logger.Info("RabbitMQ接続完了", zap.String("queue", cfg.RabbitMQ.Queue))
		}
	}

	theaterService := application.NewTheaterService(store.Theaters, cache)
	seatService := application.NewSeatService(store.Seats, store.Theaters, cache)
	reservationManager := application.NewReservationManager(store.Seats, store.Theaters, cache, cfg.Reservation.HoldTTL)
	bookingFinalizer := application.NewBookingFinalizer(store.Seats, store.Bookings, store.Theaters, cache, notifier)
	expiryReaper := application.NewExpiryReaper(store.Seats, cache, cfg.Reservation.ReaperBatchSize)

	reaper := worker.NewExpiredHoldReaper(expiryReaper, locker, cfg.Reservation.ReaperInterval, cfg.Reservation.ReaperLockTTL)
	go reaper.Start(ctx)
	defer reaper.Stop()

	e := router.New(router.Handlers{
		Theater: handler.NewTheaterHandler(theaterService),
		Seat:    handler.NewSeatHandler(seatService),
		Hold:    handler.NewHoldHandler(reservationManager),
		Booking: handler.NewBookingHandler(bookingFinalizer),
		Health:  handler.NewHealthHandler(store, cachePing),
	}, router.Options{
		Metrics:     m,
		MetricsAuth: middleware.LoadMetricsConfig(),
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	errCh := make(chan error, 1)
	go func() {
		logger.Info("サーバーを起動します",
			zap.String("port", cfg.Server.Port),
			zap.String("storage", cfg.Storage.Driver),
			zap.Duration("hold_ttl", cfg.Reservation.HoldTTL),
		)
		if err := e.Start(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("サーバー起動エラー: %w", err)
	}

	logger.Info("サーバーをシャットダウンしています...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("サーバーシャットダウンエラー: %w", err)
	}

	logger.Info("サーバーが正常にシャットダウンしました")
	return nil
}
