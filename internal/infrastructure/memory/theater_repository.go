package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
)

// TheaterRepository は映画・上映回リポジトリのインメモリ実装
type TheaterRepository struct {
	db *DB
}

// NewTheaterRepository はTheaterRepositoryを作成する
func NewTheaterRepository(db *DB) *TheaterRepository {
	return &TheaterRepository{db: db}
}

func (r *TheaterRepository) CreateMovie(ctx context.Context, m *theater.Movie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m.ID = newID()
	r.db.movies[m.ID] = copyMovie(m)
	return nil
}

func (r *TheaterRepository) GetMovieByID(ctx context.Context, id string) (*theater.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	m, ok := r.db.movies[id]
	if !ok {
		return nil, theater.ErrMovieNotFound
	}
	return copyMovie(m), nil
}

func (r *TheaterRepository) ListMovies(ctx context.Context, search string, limit, offset int) ([]*theater.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	query := strings.ToLower(search)
	var movies []*theater.Movie
	for _, m := range r.db.movies {
		if query == "" || strings.Contains(strings.ToLower(m.Name), query) {
			movies = append(movies, copyMovie(m))
		}
	}
	r.db.mu.RUnlock()

	sort.Slice(movies, func(i, j int) bool {
		if movies[i].Name != movies[j].Name {
			return movies[i].Name < movies[j].Name
		}
		return movies[i].ID < movies[j].ID
	})
	return paginate(movies, limit, offset), nil
}

func (r *TheaterRepository) Create(ctx context.Context, t *theater.Theater, seats []*seat.Seat) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.movies[t.MovieID]; !ok {
		return theater.ErrMovieNotFound
	}
	numbers := make(map[string]struct{}, len(seats))
	for _, s := range seats {
		if _, dup := numbers[s.SeatNumber]; dup {
			return theater.ErrDuplicateSeatNumber
		}
		numbers[s.SeatNumber] = struct{}{}
	}

	t.ID = newID()
	r.db.theaters[t.ID] = copyTheater(t)
	for _, s := range seats {
		s.ID = newID()
		s.TheaterID = t.ID
		s.CreatedAt = t.CreatedAt
		s.UpdatedAt = t.CreatedAt
		r.db.seats[s.ID] = &seatEntry{seat: *s}
	}
	return nil
}

func (r *TheaterRepository) GetByID(ctx context.Context, id string) (*theater.Theater, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	t, ok := r.db.theaters[id]
	if !ok {
		return nil, theater.ErrTheaterNotFound
	}
	return copyTheater(t), nil
}

func (r *TheaterRepository) ListByMovieID(ctx context.Context, movieID string) ([]*theater.Theater, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	theaters := []*theater.Theater{}
	for _, t := range r.db.theaters {
		if t.MovieID == movieID {
			theaters = append(theaters, copyTheater(t))
		}
	}
	r.db.mu.RUnlock()

	sort.Slice(theaters, func(i, j int) bool {
		if !theaters[i].ShowTime.Equal(theaters[j].ShowTime) {
			return theaters[i].ShowTime.Before(theaters[j].ShowTime)
		}
		return theaters[i].ID < theaters[j].ID
	})
	return theaters, nil
}

// Delete は上映回と、その座席・予約を削除する
func (r *TheaterRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.theaters[id]; !ok {
		return theater.ErrTheaterNotFound
	}
	delete(r.db.theaters, id)
	for seatID, e := range r.db.seats {
		if e.seat.TheaterID == id {
			delete(r.db.seats, seatID)
			delete(r.db.bookings, seatID)
		}
	}
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

var (
	_ theater.Repository = (*TheaterRepository)(nil)
	_ booking.Repository = (*BookingRepository)(nil)
)
