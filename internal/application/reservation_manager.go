package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/metrics"
)

// ReservationManager は複数座席の仮押さえを1つの論理操作として扱う
type ReservationManager struct {
	seatRepo    seat.Repository
	theaterRepo theater.Repository
	cache       SeatCache
	holdTTL     time.Duration
	now         Clock
}

func NewReservationManager(sr seat.Repository, tr theater.Repository, cache SeatCache, holdTTL time.Duration) *ReservationManager {
	return &ReservationManager{seatRepo: sr, theaterRepo: tr, cache: cache, holdTTL: holdTTL, now: time.Now}
}

// SetClock は時刻の取得元を差し替える
func (m *ReservationManager) SetClock(c Clock) { m.now = c }

// HoldTTL は既定の仮押さえ期間を返す
func (m *ReservationManager) HoldTTL() time.Duration { return m.holdTTL }

type HoldInput struct {
	TheaterID string
	SeatIDs   []string
	Holder    string
	// TTL が0の場合は既定の仮押さえ期間を使う
	TTL time.Duration
}

// HoldResult は座席ごとの仮押さえ結果
// Conflicts が空でなければ Held は空（全か無か）
type HoldResult struct {
	Held      []string
	Conflicts []string
	ExpiresAt time.Time
}

// Hold は指定座席をまとめて仮押さえする
//
// 座席はID昇順で1件ずつ条件付き更新する。競合は最後まで集めてから判定し、
// 1件でも競合があればこの呼び出しで押さえた座席をすべて解放して返す。
// 座席が存在しない場合やストア障害の場合も同様に解放したうえでエラーを返す。
func (m *ReservationManager) Hold(ctx context.Context, input HoldInput) (*HoldResult, error) {
	if input.Holder == "" {
		return nil, seat.ErrHolderRequired
	}
	seatIDs := normalizeSeatIDs(input.SeatIDs)
	if len(seatIDs) == 0 {
		return nil, seat.ErrSeatIDsRequired
	}
	ttl := input.TTL
	if ttl == 0 {
		ttl = m.holdTTL
	}
	if ttl <= 0 {
		return nil, seat.ErrInvalidTTL
	}

	if _, err := m.theaterRepo.GetByID(ctx, input.TheaterID); err != nil {
		return nil, err
	}

	now := m.now()
	until := now.Add(ttl)
	result := &HoldResult{Held: []string{}, Conflicts: []string{}, ExpiresAt: until}

	for _, id := range seatIDs {
		err := m.seatRepo.CompareAndHold(ctx, input.TheaterID, id, input.Holder, now, until)
		switch {
		case err == nil:
			result.Held = append(result.Held, id)
		case errors.Is(err, seat.ErrSeatConflict):
			result.Conflicts = append(result.Conflicts, id)
		default:
			m.rollback(ctx, input.TheaterID, input.Holder, result.Held)
			metrics.Get().ObserveHold(metrics.ResultError, 1)
			if errors.Is(err, seat.ErrSeatNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("座席の仮押さえに失敗: %w", err)
		}
	}

	if len(result.Conflicts) > 0 {
		m.rollback(ctx, input.TheaterID, input.Holder, result.Held)
		metrics.Get().ObserveHold(metrics.ResultConflict, len(result.Conflicts))
		logger.Info("仮押さえ競合",
			zap.String("theater_id", input.TheaterID),
			zap.String("holder", input.Holder),
			zap.Strings("conflicts", result.Conflicts),
		)
		result.Held = []string{}
		result.ExpiresAt = time.Time{}
	} else {
		metrics.Get().ObserveHold(metrics.ResultHeld, len(result.Held))
	}

	invalidateCache(ctx, m.cache, input.TheaterID)
	return result, nil
}

type ReleaseInput struct {
	TheaterID string
	SeatIDs   []string
	Holder    string
}

// Release は holder が保持している仮押さえを解放し、解放した座席IDを返す
// holder が保持していない座席と、別の上映の座席は無視する
func (m *ReservationManager) Release(ctx context.Context, input ReleaseInput) ([]string, error) {
	if input.Holder == "" {
		return nil, seat.ErrHolderRequired
	}
	seatIDs := normalizeSeatIDs(input.SeatIDs)
	if len(seatIDs) == 0 {
		return nil, seat.ErrSeatIDsRequired
	}
	if _, err := m.theaterRepo.GetByID(ctx, input.TheaterID); err != nil {
		return nil, err
	}

	released := []string{}
	for _, id := range seatIDs {
		ok, err := m.seatRepo.Release(ctx, input.TheaterID, id, input.Holder)
		if err != nil {
			if errors.Is(err, seat.ErrSeatNotFound) {
				continue
			}
			invalidateCache(ctx, m.cache, input.TheaterID)
			return released, fmt.Errorf("座席解放に失敗: %w", err)
		}
		if ok {
			released = append(released, id)
		}
	}

	if len(released) > 0 {
		invalidateCache(ctx, m.cache, input.TheaterID)
	}
	return released, nil
}

// rollback はこの呼び出しで押さえた座席を解放する
// 呼び出し元のキャンセルに関係なく実行する
func (m *ReservationManager) rollback(ctx context.Context, theaterID, holder string, seatIDs []string) {
	if len(seatIDs) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, id := range seatIDs {
		if _, err := m.seatRepo.Release(ctx, theaterID, id, holder); err != nil {
			logger.Error("仮押さえのロールバックに失敗",
				zap.String("seat_id", id),
				zap.String("holder", holder),
				zap.Error(err),
			)
		}
	}
}

// normalizeSeatIDs は重複と空文字を除き、昇順に並べる
func normalizeSeatIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
