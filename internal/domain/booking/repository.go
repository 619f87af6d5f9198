package booking

import "context"

// Repository は予約の参照用リポジトリのインターフェース
// 予約の作成は座席ストアの FinalizeBooking でのみ行う
type Repository interface {
	// GetBySeatID は座席IDから予約を取得する
	GetBySeatID(ctx context.Context, seatID string) (*Booking, error)

	// ListByHolder は保持者の予約一覧を新しい順で取得する
	ListByHolder(ctx context.Context, holder string, limit, offset int) ([]*Booking, error)

	// CountBySeatID は座席を参照する予約件数を取得する
	CountBySeatID(ctx context.Context, seatID string) (int, error)
}
