package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/infrastructure/memory"
)

var baseTime = time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)

// fakeClock はテスト用の手動で進める時計
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingNotifier は受け取った通知を記録する
type recordingNotifier struct {
	mu     sync.Mutex
	events []booking.ConfirmedEvent
	err    error
}

func (n *recordingNotifier) NotifyBookingConfirmed(ctx context.Context, event booking.ConfirmedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

type testEnv struct {
	clock     *fakeClock
	seats     *memory.SeatRepository
	bookings  *memory.BookingRepository
	theaters  *memory.TheaterRepository
	manager   *ReservationManager
	finalizer *BookingFinalizer
	reaper    *ExpiryReaper
	seatSvc   *SeatService
	theater   *theater.Theater
	movie     *theater.Movie
	seatIDs   []string
	notifier  *recordingNotifier
}

// setupMemoryEnv はインメモリストアで各サービスを組み立て、seatCount 席の上映回を1つ作る
func setupMemoryEnv(t *testing.T, seatCount int) *testEnv {
	t.Helper()
	ctx := context.Background()

	db := memory.NewDB()
	env := &testEnv{
		clock:    newFakeClock(baseTime),
		seats:    memory.NewSeatRepository(db),
		bookings: memory.NewBookingRepository(db),
		theaters: memory.NewTheaterRepository(db),
		notifier: &recordingNotifier{},
	}

	env.manager = NewReservationManager(env.seats, env.theaters, nil, 5*time.Minute)
	env.manager.SetClock(env.clock.Now)
	env.finalizer = NewBookingFinalizer(env.seats, env.bookings, env.theaters, nil, env.notifier)
	env.finalizer.SetClock(env.clock.Now)
	env.reaper = NewExpiryReaper(env.seats, nil, 2)
	env.seatSvc = NewSeatService(env.seats, env.theaters, nil)
	env.seatSvc.SetClock(env.clock.Now)

	theaterSvc := NewTheaterService(env.theaters, nil)
	movie, err := theaterSvc.CreateMovie(ctx, CreateMovieInput{
		Name: "Inception", Genre: "Thriller", Language: "English", Rating: 8.8,
	})
	require.NoError(t, err)
	th, seats, err := theaterSvc.ScheduleTheater(ctx, ScheduleTheaterInput{
		MovieID: movie.ID, Name: "Screen 1", ShowTime: baseTime.Add(24 * time.Hour),
		TicketPrice: 1500, SeatPrefix: "A", SeatCount: seatCount,
	})
	require.NoError(t, err)

	env.movie = movie
	env.theater = th
	for _, se := range seats {
		env.seatIDs = append(env.seatIDs, se.ID)
	}
	return env
}

func (e *testEnv) seat(t *testing.T, id string) *seat.Seat {
	t.Helper()
	s, err := e.seats.GetByID(context.Background(), id)
	require.NoError(t, err)
	return s
}

func (e *testEnv) hold(t *testing.T, holder string, seatIDs ...string) *HoldResult {
	t.Helper()
	res, err := e.manager.Hold(context.Background(), HoldInput{
		TheaterID: e.theater.ID, SeatIDs: seatIDs, Holder: holder,
	})
	require.NoError(t, err)
	return res
}

func holderName(i int) string {
	return fmt.Sprintf("user-%03d", i)
}
