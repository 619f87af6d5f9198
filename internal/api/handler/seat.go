package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/api"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
)

type SeatHandler struct {
	service SeatServiceInterface
}

func NewSeatHandler(s SeatServiceInterface) *SeatHandler {
	return &SeatHandler{service: s}
}

// SeatResponse は座席の表示用レスポンス
// 保持者IDは返さず、仮押さえ中であれば期限のみ返す
type SeatResponse struct {
	ID            string     `json:"id"`
	TheaterID     string     `json:"theater_id"`
	SeatNumber    string     `json:"seat_number"`
	State         string     `json:"state" example:"free"`
	ReservedUntil *time.Time `json:"reserved_until,omitempty"`
}

func toSeatResponse(s *seat.Seat, state seat.State) SeatResponse {
	resp := SeatResponse{
		ID:         s.ID,
		TheaterID:  s.TheaterID,
		SeatNumber: s.SeatNumber,
		State:      string(state),
	}
	if state == seat.StateReserved {
		resp.ReservedUntil = s.ReservedUntil
	}
	return resp
}

// List godoc
// @Summary 上映回の座席一覧を取得
// @Description 現在時刻で評価した状態（free / reserved / booked）を返します
// @Tags seats
// @Produce json
// @Param id path string true "上映回ID"
// @Success 200 {array} SeatResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /theaters/{id}/seats [get]
func (h *SeatHandler) List(c echo.Context) error {
	views, err := h.service.ListSeats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.NewHTTPError(err)
	}
	resp := make([]SeatResponse, len(views))
	for i, v := range views {
		resp[i] = toSeatResponse(v.Seat, v.State)
	}
	return c.JSON(http.StatusOK, resp)
}

// CountAvailable godoc
// @Summary 空席数を取得
// @Tags seats
// @Produce json
// @Param id path string true "上映回ID"
// @Success 200 {object} map[string]int
// @Failure 404 {object} api.ErrorResponse
// @Router /theaters/{id}/seats/available/count [get]
func (h *SeatHandler) CountAvailable(c echo.Context) error {
	count, err := h.service.CountAvailableSeats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.NewHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}

// Get godoc
// @Summary 座席を取得
// @Tags seats
// @Produce json
// @Param id path string true "座席ID"
// @Success 200 {object} SeatResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /seats/{id} [get]
func (h *SeatHandler) Get(c echo.Context) error {
	view, err := h.service.GetSeat(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.NewHTTPError(err)
	}
	return c.JSON(http.StatusOK, toSeatResponse(view.Seat, view.State))
}
