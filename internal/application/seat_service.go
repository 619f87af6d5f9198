package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
	redisinfra "github.com/sanosuguru/go-cinema-seat-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/logger"
)

const (
	seatCacheTTL = redisinfra.DefaultAvailableCountTTL
)

// SeatCache は空席数キャッシュ（表示用の近似値）
// 未設定（nil）の場合は常にストアから読む
type SeatCache interface {
	GetAvailableCount(ctx context.Context, theaterID string) (int, error)
	SetAvailableCount(ctx context.Context, theaterID string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, theaterIDs ...string) error
}

// Clock は現在時刻を返す。テストでは固定時刻に差し替える
type Clock func() time.Time

// SeatView は now 時点で評価した座席の状態
type SeatView struct {
	Seat  *seat.Seat
	State seat.State
}

type SeatService struct {
	seatRepo    seat.Repository
	theaterRepo theater.Repository
	cache       SeatCache
	now         Clock
}

func NewSeatService(sr seat.Repository, tr theater.Repository, cache SeatCache) *SeatService {
	return &SeatService{seatRepo: sr, theaterRepo: tr, cache: cache, now: time.Now}
}

// SetClock は時刻の取得元を差し替える
func (s *SeatService) SetClock(c Clock) { s.now = c }

// ListSeats は上映回の座席一覧を現在時刻の状態付きで返す
// 期限切れの仮押さえは回収前でも空席として扱う
func (s *SeatService) ListSeats(ctx context.Context, theaterID string) ([]SeatView, error) {
	if _, err := s.theaterRepo.GetByID(ctx, theaterID); err != nil {
		return nil, err
	}
	seats, err := s.seatRepo.ListByTheaterID(ctx, theaterID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]SeatView, len(seats))
	for i, se := range seats {
		views[i] = SeatView{Seat: se, State: se.StateAt(now)}
	}
	return views, nil
}

// GetSeat は座席を現在時刻の状態付きで返す
func (s *SeatService) GetSeat(ctx context.Context, id string) (*SeatView, error) {
	se, err := s.seatRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SeatView{Seat: se, State: se.StateAt(s.now())}, nil
}

func (s *SeatService) CountAvailableSeats(ctx context.Context, theaterID string) (int, error) {
	// キャッシュから取得を試みる
	if s.cache != nil {
		count, err := s.cache.GetAvailableCount(ctx, theaterID)
		if err == nil {
			logger.Debug("キャッシュヒット", zap.String("theater_id", theaterID), zap.Int("count", count))
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	if _, err := s.theaterRepo.GetByID(ctx, theaterID); err != nil {
		return 0, err
	}
	count, err := s.seatRepo.CountAvailableByTheaterID(ctx, theaterID, s.now())
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetAvailableCount(ctx, theaterID, count, seatCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}

	return count, nil
}

// InvalidateCache は上映回のキャッシュを無効化する
func (s *SeatService) InvalidateCache(ctx context.Context, theaterIDs ...string) {
	invalidateCache(ctx, s.cache, theaterIDs...)
}

// invalidateCache は座席状態を変更した後に呼ぶ。失敗はログのみ
func invalidateCache(ctx context.Context, cache SeatCache, theaterIDs ...string) {
	if cache == nil || len(theaterIDs) == 0 {
		return
	}
	if err := cache.Invalidate(ctx, theaterIDs...); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.Strings("theater_ids", theaterIDs), zap.Error(err))
	}
}
