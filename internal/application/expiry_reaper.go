package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/metrics"
)

const defaultReaperBatchSize = 500

// ExpiryReaper は期限切れの仮押さえを回収する
type ExpiryReaper struct {
	seatRepo  seat.Repository
	cache     SeatCache
	batchSize int
}

func NewExpiryReaper(sr seat.Repository, cache SeatCache, batchSize int) *ExpiryReaper {
	if batchSize <= 0 {
		batchSize = defaultReaperBatchSize
	}
	return &ExpiryReaper{seatRepo: sr, cache: cache, batchSize: batchSize}
}

// ReleaseExpired は now 時点で期限切れの仮押さえをすべて解放し、解放した件数を返す
//
// 解放はストアの ReleaseIfExpired で行うため、走査後に確定・再仮押さえされた座席は解放されない。
// 座席単位のエラーはログに残して続行する。一覧の取得に失敗した場合のみエラーを返す。
// 一覧は (reserved_until, id) のカーソルで進めるので、解放に失敗した座席を再び読むことはない。
func (r *ExpiryReaper) ReleaseExpired(ctx context.Context, now time.Time) (int, error) {
	released := 0
	touched := map[string]struct{}{}
	var after seat.ExpiredCursor

	for {
		seats, err := r.seatRepo.ListExpired(ctx, now, after, r.batchSize)
		if err != nil {
			r.finish(ctx, released, touched)
			return released, fmt.Errorf("期限切れ座席の取得に失敗: %w", err)
		}

		for _, se := range seats {
			ok, err := r.seatRepo.ReleaseIfExpired(ctx, se.ID, now)
			if err != nil {
				logger.Warn("期限切れ座席の解放に失敗",
					zap.String("seat_id", se.ID),
					zap.Error(err),
				)
				continue
			}
			if ok {
				released++
				touched[se.TheaterID] = struct{}{}
			}
		}

		if len(seats) < r.batchSize {
			break
		}
		after = seat.CursorAfter(seats[len(seats)-1])
		if err := ctx.Err(); err != nil {
			r.finish(ctx, released, touched)
			return released, err
		}
	}

	r.finish(ctx, released, touched)
	return released, nil
}

func (r *ExpiryReaper) finish(ctx context.Context, released int, touched map[string]struct{}) {
	metrics.Get().ObserveExpiredReleased(released)
	ids := make([]string, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	invalidateCache(ctx, r.cache, ids...)
	if released > 0 {
		logger.Info("期限切れの仮押さえを解放", zap.Int("count", released))
	}
}
