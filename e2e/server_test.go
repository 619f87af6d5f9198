package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/api/handler"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/api/middleware"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/api/router"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/application"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/config"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/infrastructure/storage"
)

// testClock はテスト中に進められる時計
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingNotifier は送信された予約確定通知を記録する
type recordingNotifier struct {
	mu     sync.Mutex
	events []booking.ConfirmedEvent
}

func (n *recordingNotifier) NotifyBookingConfirmed(ctx context.Context, event booking.ConfirmedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) Events() []booking.ConfirmedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]booking.ConfirmedEvent(nil), n.events...)
}

// TestServer はE2Eテスト用のサーバー（インメモリストア）
type TestServer struct {
	Echo     *echo.Echo
	Clock    *testClock
	Reaper   *application.ExpiryReaper
	Notifier *recordingNotifier
}

// NewTestServer はテスト用サーバーを作成
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	store := storage.NewMemory()
	clock := &testClock{now: time.Date(2026, 1, 10, 17, 0, 0, 0, time.UTC)}
	notifier := &recordingNotifier{}

	theaterService := application.NewTheaterService(store.Theaters, nil)
	seatService := application.NewSeatService(store.Seats, store.Theaters, nil)
	seatService.SetClock(clock.Now)
	reservationManager := application.NewReservationManager(store.Seats, store.Theaters, nil, config.DefaultHoldTTL)
	reservationManager.SetClock(clock.Now)
	bookingFinalizer := application.NewBookingFinalizer(store.Seats, store.Bookings, store.Theaters, nil, notifier)
	bookingFinalizer.SetClock(clock.Now)
	reaper := application.NewExpiryReaper(store.Seats, nil, 0)

	e := router.New(router.Handlers{
		Theater: handler.NewTheaterHandler(theaterService),
		Seat:    handler.NewSeatHandler(seatService),
		Hold:    handler.NewHoldHandler(reservationManager),
		Booking: handler.NewBookingHandler(bookingFinalizer),
		Health:  handler.NewHealthHandler(store, nil),
	}, router.Options{})

	return &TestServer{Echo: e, Clock: clock, Reaper: reaper, Notifier: notifier}
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}, holder string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if holder != "" {
		req.Header.Set(middleware.HeaderUserID, holder)
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// Sweep は現在時刻で期限切れ回収を1回実行する
func (s *TestServer) Sweep(t *testing.T) int {
	t.Helper()
	n, err := s.Reaper.ReleaseExpired(context.Background(), s.Clock.Now())
	require.NoError(t, err)
	return n
}

// decode はレスポンスボディを v に読み込む
func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

// Showing はテスト用に作成した上映回と座席
type Showing struct {
	MovieID   string
	TheaterID string
	SeatIDs   map[string]string // 座席番号 -> 座席ID
}

// CreateShowing は映画と上映回（A1..An）を作成する
func (s *TestServer) CreateShowing(t *testing.T, seatCount int) Showing {
	t.Helper()

	rec := s.Request("POST", "/api/v1/movies", map[string]interface{}{
		"name": "Interstellar", "genre": "Drama", "language": "English", "rating": 8.6,
	}, "")
	require.Equal(t, 201, rec.Code, rec.Body.String())
	var movie handler.MovieResponse
	decode(t, rec, &movie)

	rec = s.Request("POST", "/api/v1/movies/"+movie.ID+"/theaters", map[string]interface{}{
		"name":         "Screen 1",
		"show_time":    "2026-01-10T18:00:00Z",
		"ticket_price": 1800,
		"seat_prefix":  "A",
		"seat_count":   seatCount,
	}, "")
	require.Equal(t, 201, rec.Code, rec.Body.String())
	var th handler.TheaterResponse
	decode(t, rec, &th)

	ids := make(map[string]string, len(th.Seats))
	for _, se := range th.Seats {
		ids[se.SeatNumber] = se.ID
	}
	return Showing{MovieID: movie.ID, TheaterID: th.ID, SeatIDs: ids}
}
