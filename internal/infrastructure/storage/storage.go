// Package storage は設定に応じて座席ストア（PostgreSQL またはインメモリ）を組み立てる
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/config"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/infrastructure/memory"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/logger"
)

// Store はリポジトリ一式と疎通確認・終了処理をまとめたもの
type Store struct {
	Seats    seat.Repository
	Theaters theater.Repository
	Bookings booking.Repository

	ping  func(ctx context.Context) error
	close func() error
}

// Ping はストアの疎通を確認する
func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close は接続を閉じる
func (s *Store) Close() error { return s.close() }

// Open は cfg.Storage.Driver に応じたストアを返す
// postgres の場合は接続後にマイグレーションを適用する
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.Storage.UsesMemoryStore() {
		logger.Warn("インメモリストアで起動します（再起動でデータは失われます）")
		return NewMemory(), nil
	}
	if cfg.Storage.Driver != "postgres" {
		return nil, fmt.Errorf("未対応のストレージドライバーです: %s", cfg.Storage.Driver)
	}

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := postgres.Ping(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("データベース疎通確認に失敗: %w", err)
	}

	version, err := postgres.RunMigrations(db.DB, cfg.Storage.MigrationsPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("データベース接続完了",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
		zap.Uint("schema_version", version),
	)

	return &Store{
		Seats:    postgres.NewSeatRepository(db),
		Theaters: postgres.NewTheaterRepository(db),
		Bookings: postgres.NewBookingRepository(db),
		ping:     postgres.Pinger(db),
		close:    db.Close,
	}, nil
}

// NewMemory はインメモリストアを返す
func NewMemory() *Store {
	db := memory.NewDB()
	return &Store{
		Seats:    memory.NewSeatRepository(db),
		Theaters: memory.NewTheaterRepository(db),
		Bookings: memory.NewBookingRepository(db),
		ping:     db.Ping,
		close:    func() error { return nil },
	}
}
