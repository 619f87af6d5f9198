package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/api"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/api/middleware"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/application"
)

type HoldHandler struct {
	manager ReservationManagerInterface
}

func NewHoldHandler(m ReservationManagerInterface) *HoldHandler {
	return &HoldHandler{manager: m}
}

type HoldRequest struct {
	SeatIDs []string `json:"seat_ids" validate:"required,min=1,max=100,dive,required"`
	// 省略時はサーバー既定の仮押さえ期間
	TTLSeconds int `json:"ttl_seconds" validate:"gte=0,lte=3600" example:"300"`
}

type HoldResponse struct {
	Held      []string   `json:"held"`
	Conflicts []string   `json:"conflicts"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type ReleaseRequest struct {
	SeatIDs []string `json:"seat_ids" validate:"required,min=1,max=100,dive,required"`
}

type ReleaseResponse struct {
	Released []string `json:"released"`
}

func toHoldResponse(r *application.HoldResult) HoldResponse {
	resp := HoldResponse{Held: r.Held, Conflicts: r.Conflicts}
	if !r.ExpiresAt.IsZero() {
		expiresAt := r.ExpiresAt
		resp.ExpiresAt = &expiresAt
	}
	return resp
}

// Hold godoc
// @Summary 座席をまとめて仮押さえ
// @Description すべての座席を押さえられた場合のみ成功します。1席でも競合すれば何も押さえず409を返します
// @Tags holds
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "上映回ID"
// @Param request body HoldRequest true "座席ID"
// @Success 200 {object} HoldResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} HoldResponse "競合した座席"
// @Router /theaters/{id}/holds [post]
func (h *HoldHandler) Hold(c echo.Context) error {
	var req HoldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.manager.Hold(c.Request().Context(), application.HoldInput{
		TheaterID: c.Param("id"),
		SeatIDs:   req.SeatIDs,
		Holder:    middleware.Holder(c),
		TTL:       time.Duration(req.TTLSeconds) * time.Second,
	})
	if err != nil {
		return api.NewHTTPError(err)
	}

	status := http.StatusOK
	if len(result.Conflicts) > 0 {
		status = http.StatusConflict
	}
	return c.JSON(status, toHoldResponse(result))
}

// Release godoc
// @Summary 仮押さえを解放
// @Description 自分が押さえている座席のみ解放します。それ以外の座席は無視します
// @Tags holds
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "上映回ID"
// @Param request body ReleaseRequest true "座席ID"
// @Success 200 {object} ReleaseResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /theaters/{id}/holds [delete]
func (h *HoldHandler) Release(c echo.Context) error {
	var req ReleaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	released, err := h.manager.Release(c.Request().Context(), application.ReleaseInput{
		TheaterID: c.Param("id"),
		SeatIDs:   req.SeatIDs,
		Holder:    middleware.Holder(c),
	})
	if err != nil {
		return api.NewHTTPError(err)
	}
	return c.JSON(http.StatusOK, ReleaseResponse{Released: released})
}
