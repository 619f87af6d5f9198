package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

var (
	notFoundErrors = []error{
		seat.ErrSeatNotFound,
		theater.ErrTheaterNotFound,
		theater.ErrMovieNotFound,
		booking.ErrBookingNotFound,
	}
	conflictErrors = []error{
		seat.ErrSeatConflict,
		booking.ErrSeatAlreadyBooked,
		theater.ErrDuplicateSeatNumber,
	}
	badRequestErrors = []error{
		seat.ErrSeatIDsRequired,
		seat.ErrInvalidTTL,
		seat.ErrTheaterIDRequired,
		seat.ErrSeatNumberRequired,
		seat.ErrSeatNumberTooLong,
		theater.ErrMovieNameRequired,
		theater.ErrInvalidGenre,
		theater.ErrInvalidLanguage,
		theater.ErrInvalidRating,
		theater.ErrMovieIDRequired,
		theater.ErrTheaterNameRequired,
		theater.ErrShowTimeRequired,
		theater.ErrInvalidTicketPrice,
		theater.ErrSeatsRequired,
	}
)

// NewHTTPError はサービス層のエラーをHTTPエラーに変換する
// ドメインのエラーに該当しないものはストア障害として500にする
func NewHTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	switch {
	case errors.Is(err, seat.ErrHolderRequired):
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です").SetInternal(err)
	case matchAny(err, notFoundErrors):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	case matchAny(err, conflictErrors):
		return echo.NewHTTPError(http.StatusConflict, err.Error()).SetInternal(err)
	case matchAny(err, badRequestErrors):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー").SetInternal(err)
	}
}

func matchAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he := NewHTTPError(err)
	code := he.Code
	message, ok := he.Message.(string)
	if !ok {
		message = http.StatusText(code)
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if c.Request().Method == http.MethodHead {
		if err := c.NoContent(code); err != nil {
			logger.Error("エラーレスポンス送信失敗", zap.Error(err))
		}
		return
	}

	// JSONレスポンスを返す
	if err := c.JSON(code, ErrorResponse{
		Error: message,
		Code:  code,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
