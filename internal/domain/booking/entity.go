package booking

import "time"

// Booking は座席の確定予約を表す（作成後は不変）
//
// 1座席につき Booking は高々1件。ストア層の一意制約で保証する。
type Booking struct {
	ID        string
	SeatID    string
	Holder    string
	TheaterID string
	MovieID   string
	BookedAt  time.Time
}

// NewBooking は新しい予約を作成する
func NewBooking(seatID, holder, theaterID, movieID string, bookedAt time.Time) *Booking {
	return &Booking{
		SeatID:    seatID,
		Holder:    holder,
		TheaterID: theaterID,
		MovieID:   movieID,
		BookedAt:  bookedAt,
	}
}

// IsOwnedBy は予約が holder のものかを返す
func (b *Booking) IsOwnedBy(holder string) bool {
	return b.Holder == holder
}

// ConfirmedEvent は予約確定後に通知サービスへ渡すペイロード
type ConfirmedEvent struct {
	Holder      string    `json:"holder"`
	TheaterID   string    `json:"theater_id"`
	TheaterName string    `json:"theater_name"`
	MovieID     string    `json:"movie_id"`
	MovieName   string    `json:"movie_name"`
	ShowTime    time.Time `json:"show_time"`
	SeatIDs     []string  `json:"seat_ids"`
	SeatNumbers []string  `json:"seats"`
	Amount      int       `json:"amount"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
