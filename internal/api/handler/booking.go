package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/api"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/api/middleware"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/application"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
)

type BookingHandler struct {
	finalizer BookingFinalizerInterface
}

func NewBookingHandler(f BookingFinalizerInterface) *BookingHandler {
	return &BookingHandler{finalizer: f}
}

type FinalizeRequest struct {
	SeatIDs []string `json:"seat_ids" validate:"max=100,dive,required"`
}

type BookingResponse struct {
	ID        string    `json:"id"`
	SeatID    string    `json:"seat_id"`
	TheaterID string    `json:"theater_id"`
	MovieID   string    `json:"movie_id"`
	BookedAt  time.Time `json:"booked_at"`
}

type FinalizeResponse struct {
	Booked   []string          `json:"booked"`
	Skipped  []string          `json:"skipped"`
	Bookings []BookingResponse `json:"bookings"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		SeatID:    b.SeatID,
		TheaterID: b.TheaterID,
		MovieID:   b.MovieID,
		BookedAt:  b.BookedAt,
	}
}

func toBookingResponses(bookings []*booking.Booking) []BookingResponse {
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return resp
}

// Finalize godoc
// @Summary 仮押さえを予約として確定
// @Description 有効な仮押さえのみ確定し、期限切れや他者の座席はスキップとして返します
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body FinalizeRequest true "座席ID"
// @Success 200 {object} FinalizeResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /bookings [post]
func (h *BookingHandler) Finalize(c echo.Context) error {
	var req FinalizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.finalizer.Finalize(c.Request().Context(), application.FinalizeInput{
		Holder:  middleware.Holder(c),
		SeatIDs: req.SeatIDs,
	})
	if err != nil {
		return api.NewHTTPError(err)
	}
	return c.JSON(http.StatusOK, FinalizeResponse{
		Booked:   result.Booked,
		Skipped:  result.Skipped,
		Bookings: toBookingResponses(result.Bookings),
	})
}

// List godoc
// @Summary 予約履歴を取得
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /bookings [get]
func (h *BookingHandler) List(c echo.Context) error {
	page, err := bindPageQuery(c)
	if err != nil {
		return err
	}

	bookings, err := h.finalizer.ListBookings(c.Request().Context(), middleware.Holder(c), page.Limit, page.Offset)
	if err != nil {
		return api.NewHTTPError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponses(bookings))
}
