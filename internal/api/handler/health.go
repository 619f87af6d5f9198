package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/logger"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler はヘルスチェックハンドラー
type HealthHandler struct {
	store Pinger
	cache Pinger
}

// NewHealthHandler はHealthHandlerを作成する
// cache が nil の場合はキャッシュの確認を省略する
func NewHealthHandler(store Pinger, cache Pinger) *HealthHandler {
	return &HealthHandler{store: store, cache: cache}
}

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check はヘルスチェックを行う
// @Summary ヘルスチェック
// @Description 座席ストアへの疎通を確認する。キャッシュの障害は degraded として返す
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    map[string]string{},
	}
	code := http.StatusOK

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			logger.Error("ストアの疎通確認に失敗", zap.Error(err))
			resp.Checks["store"] = "unavailable"
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
		} else {
			resp.Checks["store"] = "ok"
		}
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			logger.Warn("キャッシュの疎通確認に失敗", zap.Error(err))
			resp.Checks["cache"] = "unavailable"
			if code == http.StatusOK {
				resp.Status = "degraded"
			}
		} else {
			resp.Checks["cache"] = "ok"
		}
	}

	return c.JSON(code, resp)
}
