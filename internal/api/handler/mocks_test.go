package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/application"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
)

// MockTheaterService はTheaterServiceInterfaceのモック
type MockTheaterService struct {
	mock.Mock
}

func (m *MockTheaterService) CreateMovie(ctx context.Context, input application.CreateMovieInput) (*theater.Movie, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*theater.Movie), args.Error(1)
}

func (m *MockTheaterService) GetMovie(ctx context.Context, id string) (*theater.Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*theater.Movie), args.Error(1)
}

func (m *MockTheaterService) ListMovies(ctx context.Context, search string, limit, offset int) ([]*theater.Movie, error) {
	args := m.Called(ctx, search, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*theater.Movie), args.Error(1)
}

func (m *MockTheaterService) ScheduleTheater(ctx context.Context, input application.ScheduleTheaterInput) (*theater.Theater, []*seat.Seat, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*theater.Theater), args.Get(1).([]*seat.Seat), args.Error(2)
}

func (m *MockTheaterService) GetTheater(ctx context.Context, id string) (*theater.Theater, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*theater.Theater), args.Error(1)
}

func (m *MockTheaterService) ListTheaters(ctx context.Context, movieID string) ([]*theater.Theater, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*theater.Theater), args.Error(1)
}

func (m *MockTheaterService) DeleteTheater(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSeatService はSeatServiceInterfaceのモック
type MockSeatService struct {
	mock.Mock
}

func (m *MockSeatService) ListSeats(ctx context.Context, theaterID string) ([]application.SeatView, error) {
	args := m.Called(ctx, theaterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.SeatView), args.Error(1)
}

func (m *MockSeatService) CountAvailableSeats(ctx context.Context, theaterID string) (int, error) {
	args := m.Called(ctx, theaterID)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatService) GetSeat(ctx context.Context, id string) (*application.SeatView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.SeatView), args.Error(1)
}

// MockReservationManager はReservationManagerInterfaceのモック
type MockReservationManager struct {
	mock.Mock
}

func (m *MockReservationManager) Hold(ctx context.Context, input application.HoldInput) (*application.HoldResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.HoldResult), args.Error(1)
}

func (m *MockReservationManager) Release(ctx context.Context, input application.ReleaseInput) ([]string, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockBookingFinalizer はBookingFinalizerInterfaceのモック
type MockBookingFinalizer struct {
	mock.Mock
}

func (m *MockBookingFinalizer) Finalize(ctx context.Context, input application.FinalizeInput) (*application.FinalizeResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.FinalizeResult), args.Error(1)
}

func (m *MockBookingFinalizer) ListBookings(ctx context.Context, holder string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, holder, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}
