package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PageQuery は一覧取得のページング指定。0 はサービス側の既定値を使う
type PageQuery struct {
	Limit  int `query:"limit" validate:"gte=0"`
	Offset int `query:"offset" validate:"gte=0"`
}

func bindPageQuery(c echo.Context) (PageQuery, error) {
	var q PageQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return q, echo.NewHTTPError(http.StatusBadRequest, "limit と offset は整数で指定してください")
	}
	if err := c.Validate(&q); err != nil {
		return q, err
	}
	return q, nil
}
