package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound   = errors.New("予約が見つかりません")
	ErrSeatAlreadyBooked = errors.New("座席は既に予約されています")
)
