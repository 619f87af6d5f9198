package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/metrics"
)

// Notifier は予約確定を外部の通知サービスへ渡す
type Notifier interface {
	NotifyBookingConfirmed(ctx context.Context, event booking.ConfirmedEvent) error
}

// BookingFinalizer は仮押さえを確定予約に変換する
type BookingFinalizer struct {
	seatRepo    seat.Repository
	bookingRepo booking.Repository
	theaterRepo theater.Repository
	cache       SeatCache
	notifier    Notifier
	now         Clock
}

func NewBookingFinalizer(sr seat.Repository, br booking.Repository, tr theater.Repository, cache SeatCache, notifier Notifier) *BookingFinalizer {
	return &BookingFinalizer{seatRepo: sr, bookingRepo: br, theaterRepo: tr, cache: cache, notifier: notifier, now: time.Now}
}

// SetClock は時刻の取得元を差し替える
func (f *BookingFinalizer) SetClock(c Clock) { f.now = c }

type FinalizeInput struct {
	Holder  string
	SeatIDs []string
}

// FinalizeResult は座席ごとの確定結果
//
// Booked には今回作成した予約に加え、同じ holder で確定済みだった座席も含む。
// Bookings は今回新しく作成された予約のみ。
type FinalizeResult struct {
	Booked   []string
	Skipped  []string
	Bookings []*booking.Booking
}

// Finalize は holder の有効な仮押さえを確定する
//
// 期限切れ・他者の仮押さえ・存在しない座席はスキップとして返す。
// ストア障害の場合はそこで処理を打ち切ってエラーを返す（確定済みの座席はそのまま）。
func (f *BookingFinalizer) Finalize(ctx context.Context, input FinalizeInput) (*FinalizeResult, error) {
	if input.Holder == "" {
		return nil, seat.ErrHolderRequired
	}

	result := &FinalizeResult{Booked: []string{}, Skipped: []string{}, Bookings: []*booking.Booking{}}
	seatIDs := normalizeSeatIDs(input.SeatIDs)
	if len(seatIDs) == 0 {
		return result, nil
	}

	now := f.now()
	touched := map[string]struct{}{}
	for _, id := range seatIDs {
		b, created, err := f.seatRepo.FinalizeBooking(ctx, id, input.Holder, now)
		switch {
		case err == nil:
			result.Booked = append(result.Booked, id)
			if created {
				result.Bookings = append(result.Bookings, b)
				touched[b.TheaterID] = struct{}{}
			}
		case errors.Is(err, seat.ErrSeatConflict), errors.Is(err, seat.ErrSeatNotFound):
			logger.Warn("座席の確定をスキップ",
				zap.String("seat_id", id),
				zap.String("holder", input.Holder),
				zap.Error(err),
			)
			result.Skipped = append(result.Skipped, id)
		default:
			metrics.Get().ObserveBooking(metrics.ResultError, 1)
			f.invalidate(ctx, touched)
			return nil, fmt.Errorf("座席の確定に失敗: %w", err)
		}
	}

	metrics.Get().ObserveBooking(metrics.ResultBooked, len(result.Bookings))
	metrics.Get().ObserveBooking(metrics.ResultSkipped, len(result.Skipped))
	f.invalidate(ctx, touched)

	if len(result.Bookings) > 0 {
		logger.Info("予約確定",
			zap.String("holder", input.Holder),
			zap.Int("booked", len(result.Bookings)),
			zap.Int("skipped", len(result.Skipped)),
		)
		f.notify(ctx, input.Holder, result.Bookings, now)
	}
	return result, nil
}

// ListBookings は holder の予約履歴を新しい順で返す
func (f *BookingFinalizer) ListBookings(ctx context.Context, holder string, limit, offset int) ([]*booking.Booking, error) {
	if holder == "" {
		return nil, seat.ErrHolderRequired
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return f.bookingRepo.ListByHolder(ctx, holder, limit, offset)
}

func (f *BookingFinalizer) invalidate(ctx context.Context, theaterIDs map[string]struct{}) {
	ids := make([]string, 0, len(theaterIDs))
	for id := range theaterIDs {
		ids = append(ids, id)
	}
	invalidateCache(ctx, f.cache, ids...)
}

// notify は新規作成した予約を上映回ごとにまとめて通知する
// 通知の失敗はログに残すのみで、確定は取り消さない
func (f *BookingFinalizer) notify(ctx context.Context, holder string, bookings []*booking.Booking, confirmedAt time.Time) {
	if f.notifier == nil {
		return
	}

	byTheater := make(map[string][]*booking.Booking)
	order := []string{}
	for _, b := range bookings {
		if _, ok := byTheater[b.TheaterID]; !ok {
			order = append(order, b.TheaterID)
		}
		byTheater[b.TheaterID] = append(byTheater[b.TheaterID], b)
	}

	for _, theaterID := range order {
		event, err := f.buildEvent(ctx, holder, theaterID, byTheater[theaterID], confirmedAt)
		if err != nil {
			logger.Error("通知内容の作成に失敗", zap.String("theater_id", theaterID), zap.Error(err))
			continue
		}
		if err := f.notifier.NotifyBookingConfirmed(ctx, event); err != nil {
			logger.Error("予約確定通知に失敗",
				zap.String("holder", holder),
				zap.String("theater_id", theaterID),
				zap.Error(err),
			)
		}
	}
}

func (f *BookingFinalizer) buildEvent(ctx context.Context, holder, theaterID string, bookings []*booking.Booking, confirmedAt time.Time) (booking.ConfirmedEvent, error) {
	t, err := f.theaterRepo.GetByID(ctx, theaterID)
	if err != nil {
		return booking.ConfirmedEvent{}, err
	}
	movie, err := f.theaterRepo.GetMovieByID(ctx, t.MovieID)
	if err != nil {
		return booking.ConfirmedEvent{}, err
	}
	seats, err := f.seatRepo.ListByTheaterID(ctx, theaterID)
	if err != nil {
		return booking.ConfirmedEvent{}, err
	}
	numbers := make(map[string]string, len(seats))
	for _, se := range seats {
		numbers[se.ID] = se.SeatNumber
	}

	event := booking.ConfirmedEvent{
		Holder:      holder,
		TheaterID:   t.ID,
		TheaterName: t.Name,
		MovieID:     movie.ID,
		MovieName:   movie.Name,
		ShowTime:    t.ShowTime,
		SeatIDs:     make([]string, len(bookings)),
		SeatNumbers: make([]string, len(bookings)),
		Amount:      t.TicketPrice * len(bookings),
		ConfirmedAt: confirmedAt,
	}
	for i, b := range bookings {
		event.SeatIDs[i] = b.SeatID
		event.SeatNumbers[i] = numbers[b.SeatID]
	}
	return event, nil
}
