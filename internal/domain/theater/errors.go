package theater

import "errors"

// Theater ドメインのエラー定義
var (
	ErrMovieNotFound       = errors.New("映画が見つかりません")
	ErrTheaterNotFound     = errors.New("上映回が見つかりません")
	ErrMovieNameRequired   = errors.New("映画名は必須です")
	ErrInvalidGenre        = errors.New("ジャンルが不正です")
	ErrInvalidLanguage     = errors.New("言語が不正です")
	ErrInvalidRating       = errors.New("評価は0から10の範囲である必要があります")
	ErrMovieIDRequired     = errors.New("映画IDは必須です")
	ErrTheaterNameRequired = errors.New("上映名は必須です")
	ErrShowTimeRequired    = errors.New("上映時刻は必須です")
	ErrInvalidTicketPrice  = errors.New("チケット価格は0以上である必要があります")
	ErrSeatsRequired       = errors.New("座席は1つ以上必要です")
	ErrDuplicateSeatNumber = errors.New("座席番号が重複しています")
)
