package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
)

// MockSeatRepository はseat.Repositoryのモック
type MockSeatRepository struct {
	mock.Mock
}

func (m *MockSeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) ListByTheaterID(ctx context.Context, theaterID string) ([]*seat.Seat, error) {
	args := m.Called(ctx, theaterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) CountAvailableByTheaterID(ctx context.Context, theaterID string, now time.Time) (int, error) {
	args := m.Called(ctx, theaterID, now)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatRepository) CompareAndHold(ctx context.Context, theaterID, seatID, holder string, now, until time.Time) error {
	args := m.Called(ctx, theaterID, seatID, holder, now, until)
	return args.Error(0)
}

func (m *MockSeatRepository) FinalizeBooking(ctx context.Context, seatID, holder string, now time.Time) (*booking.Booking, bool, error) {
	args := m.Called(ctx, seatID, holder, now)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*booking.Booking), args.Bool(1), args.Error(2)
}

func (m *MockSeatRepository) Release(ctx context.Context, theaterID, seatID, holder string) (bool, error) {
	args := m.Called(ctx, theaterID, seatID, holder)
	return args.Bool(0), args.Error(1)
}

func (m *MockSeatRepository) ReleaseIfExpired(ctx context.Context, seatID string, now time.Time) (bool, error) {
	args := m.Called(ctx, seatID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockSeatRepository) ListExpired(ctx context.Context, now time.Time, after seat.ExpiredCursor, limit int) ([]*seat.Seat, error) {
	args := m.Called(ctx, now, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

// MockTheaterRepository はtheater.Repositoryのモック
type MockTheaterRepository struct {
	mock.Mock
}

func (m *MockTheaterRepository) CreateMovie(ctx context.Context, movie *theater.Movie) error {
	args := m.Called(ctx, movie)
	return args.Error(0)
}

func (m *MockTheaterRepository) GetMovieByID(ctx context.Context, id string) (*theater.Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*theater.Movie), args.Error(1)
}

func (m *MockTheaterRepository) ListMovies(ctx context.Context, search string, limit, offset int) ([]*theater.Movie, error) {
	args := m.Called(ctx, search, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*theater.Movie), args.Error(1)
}

func (m *MockTheaterRepository) Create(ctx context.Context, t *theater.Theater, seats []*seat.Seat) error {
	args := m.Called(ctx, t, seats)
	return args.Error(0)
}

func (m *MockTheaterRepository) GetByID(ctx context.Context, id string) (*theater.Theater, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*theater.Theater), args.Error(1)
}

func (m *MockTheaterRepository) ListByMovieID(ctx context.Context, movieID string) ([]*theater.Theater, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*theater.Theater), args.Error(1)
}

func (m *MockTheaterRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSeatCache はSeatCacheのモック
type MockSeatCache struct {
	mock.Mock
}

func (m *MockSeatCache) GetAvailableCount(ctx context.Context, theaterID string) (int, error) {
	args := m.Called(ctx, theaterID)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatCache) SetAvailableCount(ctx context.Context, theaterID string, count int, ttl time.Duration) error {
	args := m.Called(ctx, theaterID, count, ttl)
	return args.Error(0)
}

func (m *MockSeatCache) Invalidate(ctx context.Context, theaterIDs ...string) error {
	args := m.Called(ctx, theaterIDs)
	return args.Error(0)
}

// MockNotifier はNotifierのモック
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyBookingConfirmed(ctx context.Context, event booking.ConfirmedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
