package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	// HeaderUserID は外部の認証基盤が付与する利用者IDヘッダー
	HeaderUserID = "X-User-ID"

	holderContextKey = "holder"
)

// RequireHolder は X-User-ID ヘッダーを保持者IDとしてコンテキストに格納する
// ヘッダーがない場合は401を返す
func RequireHolder() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			holder := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if holder == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
			}
			c.Set(holderContextKey, holder)
			return next(c)
		}
	}
}

// Holder はコンテキストから保持者IDを取り出す
// RequireHolder を通っていない場合はヘッダーを直接読む
func Holder(c echo.Context) string {
	if v, ok := c.Get(holderContextKey).(string); ok {
		return v
	}
	return strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
}
