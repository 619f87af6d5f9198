package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
)

func TestNewTheaterService(t *testing.T) {
	service := NewTheaterService(new(MockTheaterRepository), nil)
	assert.NotNil(t, service)
}

func TestTheaterService_CreateMovie(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateMovieInput
		wantErr error
	}{
		{
			name:  "正常に作成できる",
			input: CreateMovieInput{Name: "Inception", Genre: "Thriller", Language: "English", Rating: 8.8},
		},
		{
			name:    "名前が空",
			input:   CreateMovieInput{Genre: "Thriller", Language: "English"},
			wantErr: theater.ErrMovieNameRequired,
		},
		{
			name:    "不正なジャンル",
			input:   CreateMovieInput{Name: "X", Genre: "Horror", Language: "English"},
			wantErr: theater.ErrInvalidGenre,
		},
		{
			name:    "評価が範囲外",
			input:   CreateMovieInput{Name: "X", Genre: "Drama", Language: "Hindi", Rating: 11},
			wantErr: theater.ErrInvalidRating,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTheaterRepository)
			mockRepo.On("CreateMovie", mock.Anything, mock.AnythingOfType("*theater.Movie")).Return(nil)
			service := NewTheaterService(mockRepo, nil)

			m, err := service.CreateMovie(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				mockRepo.AssertNotCalled(t, "CreateMovie", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input.Name, m.Name)
		})
	}
}

func TestTheaterService_CreateMovie_RepositoryError(t *testing.T) {
	mockRepo := new(MockTheaterRepository)
	mockRepo.On("CreateMovie", mock.Anything, mock.Anything).Return(errors.New("db error"))
	service := NewTheaterService(mockRepo, nil)

	_, err := service.CreateMovie(context.Background(), CreateMovieInput{Name: "Inception", Genre: "Thriller", Language: "English"})
	assert.Error(t, err)
}

func TestTheaterService_ListMovies_ClampsPaging(t *testing.T) {
	mockRepo := new(MockTheaterRepository)
	mockRepo.On("ListMovies", mock.Anything, "inc", 100, 0).Return([]*theater.Movie{}, nil)
	service := NewTheaterService(mockRepo, nil)

	_, err := service.ListMovies(context.Background(), "inc", 1000, -5)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestTheaterService_ScheduleTheater(t *testing.T) {
	movie := &theater.Movie{ID: "movie-1", Name: "Inception"}
	showTime := time.Date(2026, 2, 1, 19, 0, 0, 0, time.UTC)

	t.Run("接頭辞と席数から座席を生成する", func(t *testing.T) {
		mockRepo := new(MockTheaterRepository)
		mockRepo.On("GetMovieByID", mock.Anything, "movie-1").Return(movie, nil)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*theater.Theater"), mock.MatchedBy(func(seats []*seat.Seat) bool {
			return len(seats) == 3 && seats[0].SeatNumber == "B1" && seats[2].SeatNumber == "B3"
		})).Return(nil)
		service := NewTheaterService(mockRepo, nil)

		th, seats, err := service.ScheduleTheater(context.Background(), ScheduleTheaterInput{
			MovieID: "movie-1", Name: "Screen 2", ShowTime: showTime, TicketPrice: 1800, SeatPrefix: "B", SeatCount: 3,
		})
		require.NoError(t, err)
		assert.Equal(t, "Screen 2", th.Name)
		assert.Len(t, seats, 3)
		mockRepo.AssertExpectations(t)
	})

	t.Run("座席番号を明示できる", func(t *testing.T) {
		mockRepo := new(MockTheaterRepository)
		mockRepo.On("GetMovieByID", mock.Anything, "movie-1").Return(movie, nil)
		mockRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		service := NewTheaterService(mockRepo, nil)

		_, seats, err := service.ScheduleTheater(context.Background(), ScheduleTheaterInput{
			MovieID: "movie-1", Name: "Screen 2", ShowTime: showTime, SeatNumbers: []string{"C1", "C2"},
		})
		require.NoError(t, err)
		assert.Equal(t, "C2", seats[1].SeatNumber)
	})

	errorTests := []struct {
		name    string
		input   ScheduleTheaterInput
		wantErr error
	}{
		{"座席なし", ScheduleTheaterInput{MovieID: "movie-1", Name: "S", ShowTime: showTime}, theater.ErrSeatsRequired},
		{"座席番号の重複", ScheduleTheaterInput{MovieID: "movie-1", Name: "S", ShowTime: showTime, SeatNumbers: []string{"A1", "A1"}}, theater.ErrDuplicateSeatNumber},
		{"座席番号が長すぎる", ScheduleTheaterInput{MovieID: "movie-1", Name: "S", ShowTime: showTime, SeatNumbers: []string{"ABCDEFGHIJK"}}, seat.ErrSeatNumberTooLong},
		{"上映名なし", ScheduleTheaterInput{MovieID: "movie-1", ShowTime: showTime, SeatCount: 1}, theater.ErrTheaterNameRequired},
		{"負の価格", ScheduleTheaterInput{MovieID: "movie-1", Name: "S", ShowTime: showTime, SeatCount: 1, TicketPrice: -1}, theater.ErrInvalidTicketPrice},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTheaterRepository)
			mockRepo.On("GetMovieByID", mock.Anything, "movie-1").Return(movie, nil)
			service := NewTheaterService(mockRepo, nil)

			_, _, err := service.ScheduleTheater(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("存在しない映画", func(t *testing.T) {
		mockRepo := new(MockTheaterRepository)
		mockRepo.On("GetMovieByID", mock.Anything, "missing").Return(nil, theater.ErrMovieNotFound)
		service := NewTheaterService(mockRepo, nil)

		_, _, err := service.ScheduleTheater(context.Background(), ScheduleTheaterInput{MovieID: "missing", Name: "S", ShowTime: showTime, SeatCount: 1})
		assert.ErrorIs(t, err, theater.ErrMovieNotFound)
	})
}

func TestTheaterService_DeleteTheater(t *testing.T) {
	t.Run("削除後にキャッシュを無効化する", func(t *testing.T) {
		mockRepo := new(MockTheaterRepository)
		mockCache := new(MockSeatCache)
		mockRepo.On("Delete", mock.Anything, "theater-1").Return(nil)
		mockCache.On("Invalidate", mock.Anything, []string{"theater-1"}).Return(nil)
		service := NewTheaterService(mockRepo, mockCache)

		require.NoError(t, service.DeleteTheater(context.Background(), "theater-1"))
		mockCache.AssertExpectations(t)
	})

	t.Run("存在しない上映回", func(t *testing.T) {
		mockRepo := new(MockTheaterRepository)
		mockCache := new(MockSeatCache)
		mockRepo.On("Delete", mock.Anything, "missing").Return(theater.ErrTheaterNotFound)
		service := NewTheaterService(mockRepo, mockCache)

		err := service.DeleteTheater(context.Background(), "missing")
		assert.ErrorIs(t, err, theater.ErrTheaterNotFound)
		mockCache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})
}
