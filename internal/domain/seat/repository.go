package seat

import (
	"context"
	"time"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
)

// Repository は座席状態を永続化するストアのインターフェース
//
// 変更系の操作はすべて座席1件単位でアトミックでなければならない。
// 読み取り→判定→書き込みの間に他の呼び出しが割り込める実装は不可。
type Repository interface {
	// GetByID はIDから座席を取得する
	GetByID(ctx context.Context, id string) (*Seat, error)

	// ListByTheaterID は上映の座席一覧を座席番号順で取得する
	ListByTheaterID(ctx context.Context, theaterID string) ([]*Seat, error)

	// CountAvailableByTheaterID は now 時点で仮押さえ可能な座席数を取得する
	CountAvailableByTheaterID(ctx context.Context, theaterID string, now time.Time) (int, error)

	// CompareAndHold は座席が未確定かつ他者の有効な仮押さえがない場合のみ仮押さえする
	// 競合時は ErrSeatConflict、座席が上映に存在しない場合は ErrSeatNotFound を返す
	CompareAndHold(ctx context.Context, theaterID, seatID, holder string, now, until time.Time) error

	// FinalizeBooking は holder の有効な仮押さえを確定し、予約レコードを作成する
	// 既に同じ holder で確定済みの場合は既存の予約を created=false で返す
	FinalizeBooking(ctx context.Context, seatID, holder string, now time.Time) (b *booking.Booking, created bool, err error)

	// Release は上映 theaterID の座席について holder が保持している仮押さえを解放する
	// 座席が別の上映に属する場合は何もしない
	Release(ctx context.Context, theaterID, seatID, holder string) (bool, error)

	// ReleaseIfExpired は reserved_until <= now の場合のみ仮押さえを解放する
	ReleaseIfExpired(ctx context.Context, seatID string, now time.Time) (bool, error)

	// ListExpired は期限切れの仮押さえが残っている座席を (reserved_until, id) 順で
	// after より後ろから最大 limit 件取得する
	ListExpired(ctx context.Context, now time.Time, after ExpiredCursor, limit int) ([]*Seat, error)
}

// ExpiredCursor は期限切れ座席一覧の走査位置。ゼロ値は先頭を表す
type ExpiredCursor struct {
	ReservedUntil time.Time
	SeatID        string
}

// IsZero は先頭からの走査かどうかを返す
func (c ExpiredCursor) IsZero() bool {
	return c.SeatID == ""
}

// CursorAfter は座席 s の直後を指すカーソルを返す
func CursorAfter(s *Seat) ExpiredCursor {
	c := ExpiredCursor{SeatID: s.ID}
	if s.ReservedUntil != nil {
		c.ReservedUntil = *s.ReservedUntil
	}
	return c
}

// After は s がカーソルより後ろに並ぶかどうかを返す
func (c ExpiredCursor) After(s *Seat) bool {
	if c.IsZero() {
		return true
	}
	var until time.Time
	if s.ReservedUntil != nil {
		until = *s.ReservedUntil
	}
	if !until.Equal(c.ReservedUntil) {
		return until.After(c.ReservedUntil)
	}
	return s.ID > c.SeatID
}
