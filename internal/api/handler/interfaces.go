package handler

import (
	"context"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/application"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
)

// TheaterServiceInterface は映画・上映回サービスのインターフェース
type TheaterServiceInterface interface {
	CreateMovie(ctx context.Context, input application.CreateMovieInput) (*theater.Movie, error)
	GetMovie(ctx context.Context, id string) (*theater.Movie, error)
	ListMovies(ctx context.Context, search string, limit, offset int) ([]*theater.Movie, error)
	ScheduleTheater(ctx context.Context, input application.ScheduleTheaterInput) (*theater.Theater, []*seat.Seat, error)
	GetTheater(ctx context.Context, id string) (*theater.Theater, error)
	ListTheaters(ctx context.Context, movieID string) ([]*theater.Theater, error)
	DeleteTheater(ctx context.Context, id string) error
}

// SeatServiceInterface は座席参照サービスのインターフェース
type SeatServiceInterface interface {
	ListSeats(ctx context.Context, theaterID string) ([]application.SeatView, error)
	CountAvailableSeats(ctx context.Context, theaterID string) (int, error)
	GetSeat(ctx context.Context, id string) (*application.SeatView, error)
}

// ReservationManagerInterface は仮押さえのインターフェース
type ReservationManagerInterface interface {
	Hold(ctx context.Context, input application.HoldInput) (*application.HoldResult, error)
	Release(ctx context.Context, input application.ReleaseInput) ([]string, error)
}

// BookingFinalizerInterface は予約確定のインターフェース
type BookingFinalizerInterface interface {
	Finalize(ctx context.Context, input application.FinalizeInput) (*application.FinalizeResult, error)
	ListBookings(ctx context.Context, holder string, limit, offset int) ([]*booking.Booking, error)
}

// Pinger はストアの疎通確認を行う
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc は関数を Pinger として扱うためのアダプター
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }
