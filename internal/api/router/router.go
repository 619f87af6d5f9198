package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/api"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/api/handler"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/api/middleware"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/pkg/metrics"
)

// Handlers はルーティング対象のハンドラー一式
type Handlers struct {
	Theater *handler.TheaterHandler
	Seat    *handler.SeatHandler
	Hold    *handler.HoldHandler
	Booking *handler.BookingHandler
	Health  *handler.HealthHandler
}

// Options はメトリクス関連の設定
// Metrics が nil の場合は HTTP メトリクスを収集しない
type Options struct {
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	MetricsAuth *middleware.MetricsConfig
}

// New はミドルウェアとルートを設定した Echo を返す
func New(h Handlers, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	middleware.SetupMiddleware(e)
	if opts.Metrics != nil {
		e.Use(middleware.PrometheusMiddleware(opts.Metrics))
	}

	e.GET("/health", h.Health.Check)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})),
		middleware.MetricsBasicAuth(opts.MetricsAuth))

	v1 := e.Group("/api/v1")

	// 映画・上映回
	v1.POST("/movies", h.Theater.CreateMovie)
	v1.GET("/movies", h.Theater.ListMovies)
	v1.GET("/movies/:id", h.Theater.GetMovie)
	v1.POST("/movies/:id/theaters", h.Theater.ScheduleTheater)
	v1.GET("/movies/:id/theaters", h.Theater.ListTheaters)
	v1.GET("/theaters/:id", h.Theater.GetTheater)
	v1.DELETE("/theaters/:id", h.Theater.DeleteTheater)

	// 座席
	v1.GET("/theaters/:id/seats", h.Seat.List)
	v1.GET("/theaters/:id/seats/available/count", h.Seat.CountAvailable)
	v1.GET("/seats/:id", h.Seat.Get)

	// 仮押さえ・予約（X-User-ID 必須）
	holder := middleware.RequireHolder()
	v1.POST("/theaters/:id/holds", h.Hold.Hold, holder)
	v1.DELETE("/theaters/:id/holds", h.Hold.Release, holder)
	v1.POST("/bookings", h.Booking.Finalize, holder)
	v1.GET("/bookings", h.Booking.List, holder)

	return e
}
