package seat

import "time"

// State は座席の状態を表す
type State string

const (
	StateFree     State = "free"
	StateReserved State = "reserved"
	StateBooked   State = "booked"
)

// Seat は上映回（Theater）に属する座席エンティティを表す
//
// Booked は終端状態。ReservedBy / ReservedUntil は仮押さえ情報で、
// Booked が true の間は常に nil になる。
type Seat struct {
	ID            string
	TheaterID     string
	SeatNumber    string
	Booked        bool
	ReservedBy    *string
	ReservedUntil *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int
}

// NewSeat は新しい座席を作成する
func NewSeat(theaterID, seatNumber string) *Seat {
	now := time.Now()
	return &Seat{
		TheaterID:  theaterID,
		SeatNumber: seatNumber,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// StateAt は now 時点の座席状態を返す（期限切れの仮押さえは空席扱い）
func (s *Seat) StateAt(now time.Time) State {
	if s.Booked {
		return StateBooked
	}
	if s.hasActiveHold(now) {
		return StateReserved
	}
	return StateFree
}

// IsHeldBy は now 時点で holder が有効な仮押さえを持っているかを返す
func (s *Seat) IsHeldBy(holder string, now time.Time) bool {
	return !s.Booked && s.hasActiveHold(now) && *s.ReservedBy == holder
}

// CanBeHeldBy は holder が now 時点でこの座席を仮押さえできるかを返す
// 同一保持者による再仮押さえ（期限延長）は常に許可される
func (s *Seat) CanBeHeldBy(holder string, now time.Time) bool {
	if s.Booked {
		return false
	}
	if !s.hasActiveHold(now) {
		return true
	}
	return *s.ReservedBy == holder
}

// IsExpiredHold は仮押さえが残っていて、かつ now 時点で期限切れかを返す
func (s *Seat) IsExpiredHold(now time.Time) bool {
	return !s.Booked && s.ReservedBy != nil && s.ReservedUntil != nil && !s.ReservedUntil.After(now)
}

// Hold は座席を仮押さえ状態にする
func (s *Seat) Hold(holder string, now, until time.Time) error {
	if !s.CanBeHeldBy(holder, now) {
		return ErrSeatConflict
	}
	s.ReservedBy = &holder
	s.ReservedUntil = &until
	s.UpdatedAt = now
	s.Version++
	return nil
}

// Book は有効な仮押さえを確定状態にする
func (s *Seat) Book(holder string, now time.Time) error {
	if !s.IsHeldBy(holder, now) {
		return ErrSeatConflict
	}
	s.Booked = true
	s.clearHold(now)
	return nil
}

// ReleaseBy は holder が保持している仮押さえを解放する
func (s *Seat) ReleaseBy(holder string, now time.Time) bool {
	if s.Booked || s.ReservedBy == nil || *s.ReservedBy != holder {
		return false
	}
	s.clearHold(now)
	return true
}

// ReleaseIfExpired は期限切れの仮押さえのみを解放する
func (s *Seat) ReleaseIfExpired(now time.Time) bool {
	if !s.IsExpiredHold(now) {
		return false
	}
	s.clearHold(now)
	return true
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.TheaterID == "" {
		return ErrTheaterIDRequired
	}
	return ValidateSeatNumber(s.SeatNumber)
}

// ValidateSeatNumber は座席番号（表示ラベル）を検証する
func ValidateSeatNumber(n string) error {
	if n == "" {
		return ErrSeatNumberRequired
	}
	if len(n) > MaxSeatNumberLength {
		return ErrSeatNumberTooLong
	}
	return nil
}

// MaxSeatNumberLength は座席番号（表示ラベル）の最大長
const MaxSeatNumberLength = 10

func (s *Seat) hasActiveHold(now time.Time) bool {
	return s.ReservedBy != nil && s.ReservedUntil != nil && s.ReservedUntil.After(now)
}

func (s *Seat) clearHold(now time.Time) {
	s.ReservedBy = nil
	s.ReservedUntil = nil
	s.UpdatedAt = now
	s.Version++
}
