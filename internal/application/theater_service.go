package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
)

// maxSeatsPerTheater は1上映回あたりの座席数の上限
const maxSeatsPerTheater = 1000

type TheaterService struct {
	theaterRepo theater.Repository
	cache       SeatCache
}

func NewTheaterService(theaterRepo theater.Repository, cache SeatCache) *TheaterService {
	return &TheaterService{theaterRepo: theaterRepo, cache: cache}
}

type CreateMovieInput struct {
	Name        string
	Genre       string
	Language    string
	Rating      float64
	Cast        string
	Description string
	TrailerURL  string
}

func (s *TheaterService) CreateMovie(ctx context.Context, input CreateMovieInput) (*theater.Movie, error) {
	m := theater.NewMovie(input.Name, input.Genre, input.Language, input.Rating, input.Cast, input.Description, input.TrailerURL)
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.theaterRepo.CreateMovie(ctx, m); err != nil {
		return nil, fmt.Errorf("映画作成に失敗しました: %w", err)
	}
	return m, nil
}

func (s *TheaterService) GetMovie(ctx context.Context, id string) (*theater.Movie, error) {
	return s.theaterRepo.GetMovieByID(ctx, id)
}

func (s *TheaterService) ListMovies(ctx context.Context, search string, limit, offset int) ([]*theater.Movie, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.theaterRepo.ListMovies(ctx, search, limit, offset)
}

// ScheduleTheaterInput は上映回の作成内容
// SeatNumbers を指定しない場合は SeatPrefix + 連番で SeatCount 席を作成する
type ScheduleTheaterInput struct {
	MovieID     string
	Name        string
	ShowTime    time.Time
	TicketPrice int
	SeatNumbers []string
	SeatPrefix  string
	SeatCount   int
}

// ScheduleTheater は上映回とその座席を作成する
func (s *TheaterService) ScheduleTheater(ctx context.Context, input ScheduleTheaterInput) (*theater.Theater, []*seat.Seat, error) {
	if _, err := s.theaterRepo.GetMovieByID(ctx, input.MovieID); err != nil {
		return nil, nil, err
	}

	t := theater.NewTheater(input.MovieID, input.Name, input.ShowTime, input.TicketPrice)
	if err := t.Validate(); err != nil {
		return nil, nil, fmt.Errorf("バリデーションエラー: %w", err)
	}

	numbers := input.SeatNumbers
	if len(numbers) == 0 {
		numbers = make([]string, 0, input.SeatCount)
		for i := 1; i <= input.SeatCount; i++ {
			numbers = append(numbers, fmt.Sprintf("%s%d", input.SeatPrefix, i))
		}
	}
	if len(numbers) == 0 || len(numbers) > maxSeatsPerTheater {
		return nil, nil, theater.ErrSeatsRequired
	}

	seen := make(map[string]struct{}, len(numbers))
	seats := make([]*seat.Seat, 0, len(numbers))
	for _, n := range numbers {
		if _, dup := seen[n]; dup {
			return nil, nil, theater.ErrDuplicateSeatNumber
		}
		seen[n] = struct{}{}
		if err := seat.ValidateSeatNumber(n); err != nil {
			return nil, nil, fmt.Errorf("バリデーションエラー: %w", err)
		}
		seats = append(seats, seat.NewSeat("", n))
	}

	if err := s.theaterRepo.Create(ctx, t, seats); err != nil {
		return nil, nil, err
	}
	return t, seats, nil
}

func (s *TheaterService) GetTheater(ctx context.Context, id string) (*theater.Theater, error) {
	return s.theaterRepo.GetByID(ctx, id)
}

func (s *TheaterService) ListTheaters(ctx context.Context, movieID string) ([]*theater.Theater, error) {
	if _, err := s.theaterRepo.GetMovieByID(ctx, movieID); err != nil {
		return nil, err
	}
	return s.theaterRepo.ListByMovieID(ctx, movieID)
}

// DeleteTheater は上映回を削除する（座席・予約もカスケード削除）
func (s *TheaterService) DeleteTheater(ctx context.Context, id string) error {
	if err := s.theaterRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidateCache(ctx, s.cache, id)
	return nil
}
