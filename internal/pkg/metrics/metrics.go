package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 仮押さえ・確定の結果ラベル
const (
	ResultHeld     = "held"
	ResultConflict = "conflict"
	ResultBooked   = "booked"
	ResultSkipped  = "skipped"
	ResultError    = "error"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 座席単位の仮押さえ結果（result: held, conflict, error）
	SeatHoldsTotal *prometheus.CounterVec

	// 座席単位の確定結果（result: booked, skipped, error）
	SeatBookingsTotal *prometheus.CounterVec

	// 期限切れで解放された仮押さえの総数
	ExpiredHoldsReleasedTotal prometheus.Counter

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		SeatHoldsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_holds_total",
				Help: "Total number of per-seat hold attempts",
			},
			[]string{"result"},
		),
		SeatBookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_bookings_total",
				Help: "Total number of per-seat finalize attempts",
			},
			[]string{"result"},
		),
		ExpiredHoldsReleasedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "expired_holds_released_total",
				Help: "Total number of expired seat holds released by the reaper",
			},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SeatHoldsTotal,
		m.SeatBookingsTotal,
		m.ExpiredHoldsReleasedTotal,
		m.DistributedLockDuration,
	)

	return m
}

// ObserveHold は仮押さえ結果を記録する（m が nil なら何もしない）
func (m *Metrics) ObserveHold(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SeatHoldsTotal.WithLabelValues(result).Add(float64(n))
}

// ObserveBooking は確定結果を記録する（m が nil なら何もしない）
func (m *Metrics) ObserveBooking(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SeatBookingsTotal.WithLabelValues(result).Add(float64(n))
}

// ObserveExpiredReleased は期限切れ解放数を記録する
func (m *Metrics) ObserveExpiredReleased(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ExpiredHoldsReleasedTotal.Add(float64(n))
}

// ObserveLock は分散ロック操作の所要時間を記録する
func (m *Metrics) ObserveLock(operation string, ok bool, since time.Time) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = "failed"
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(since).Seconds())
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
