package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound       = errors.New("座席が見つかりません")
	ErrSeatConflict       = errors.New("座席は利用できません")
	ErrSeatIDsRequired    = errors.New("座席IDは必須です")
	ErrHolderRequired     = errors.New("保持者IDは必須です")
	ErrInvalidTTL         = errors.New("仮押さえの有効期間は正の値である必要があります")
	ErrTheaterIDRequired  = errors.New("上映IDは必須です")
	ErrSeatNumberRequired = errors.New("座席番号は必須です")
	ErrSeatNumberTooLong  = errors.New("座席番号が長すぎます")
)
