package memory

import (
	"context"
	"sort"
	"time"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
)

// SeatRepository は座席ストアのインメモリ実装
type SeatRepository struct {
	db *DB
}

// NewSeatRepository はSeatRepositoryを作成する
func NewSeatRepository(db *DB) *SeatRepository {
	return &SeatRepository{db: db}
}

func (r *SeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := r.db.entry(id)
	if !ok {
		return nil, seat.ErrSeatNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(), nil
}

func (r *SeatRepository) ListByTheaterID(ctx context.Context, theaterID string) ([]*seat.Seat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries := r.theaterEntries(theaterID)

	seats := make([]*seat.Seat, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		seats = append(seats, e.snapshot())
		e.mu.Unlock()
	}
	sort.Slice(seats, func(i, j int) bool {
		a, b := seats[i].SeatNumber, seats[j].SeatNumber
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return seats, nil
}

func (r *SeatRepository) CountAvailableByTheaterID(ctx context.Context, theaterID string, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count := 0
	for _, e := range r.theaterEntries(theaterID) {
		e.mu.Lock()
		if e.seat.StateAt(now) == seat.StateFree {
			count++
		}
		e.mu.Unlock()
	}
	return count, nil
}

func (r *SeatRepository) CompareAndHold(ctx context.Context, theaterID, seatID, holder string, now, until time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, ok := r.db.entry(seatID)
	if !ok {
		return seat.ErrSeatNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.seat.TheaterID != theaterID {
		return seat.ErrSeatNotFound
	}
	return e.seat.Hold(holder, now, until)
}

func (r *SeatRepository) FinalizeBooking(ctx context.Context, seatID, holder string, now time.Time) (*booking.Booking, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	e, ok := r.db.entry(seatID)
	if !ok {
		return nil, false, seat.ErrSeatNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.seat.Booked {
		r.db.mu.RLock()
		existing, found := r.db.bookings[seatID]
		r.db.mu.RUnlock()
		if found && existing.IsOwnedBy(holder) {
			return copyBooking(existing), false, nil
		}
		return nil, false, seat.ErrSeatConflict
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, found := r.db.theaters[e.seat.TheaterID]
	if !found {
		return nil, false, seat.ErrSeatNotFound
	}
	if _, dup := r.db.bookings[seatID]; dup {
		return nil, false, booking.ErrSeatAlreadyBooked
	}
	if err := e.seat.Book(holder, now); err != nil {
		return nil, false, err
	}

	b := booking.NewBooking(seatID, holder, t.ID, t.MovieID, now)
	b.ID = newID()
	r.db.bookings[seatID] = b
	return copyBooking(b), true, nil
}

func (r *SeatRepository) Release(ctx context.Context, theaterID, seatID, holder string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	e, ok := r.db.entry(seatID)
	if !ok {
		return false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seat.TheaterID != theaterID {
		return false, nil
	}
	return e.seat.ReleaseBy(holder, time.Now()), nil
}

func (r *SeatRepository) ReleaseIfExpired(ctx context.Context, seatID string, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	e, ok := r.db.entry(seatID)
	if !ok {
		return false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seat.ReleaseIfExpired(now), nil
}

func (r *SeatRepository) ListExpired(ctx context.Context, now time.Time, after seat.ExpiredCursor, limit int) ([]*seat.Seat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	entries := make([]*seatEntry, 0, len(r.db.seats))
	for _, e := range r.db.seats {
		entries = append(entries, e)
	}
	r.db.mu.RUnlock()

	var expired []*seat.Seat
	for _, e := range entries {
		e.mu.Lock()
		if e.seat.IsExpiredHold(now) && after.After(&e.seat) {
			expired = append(expired, e.snapshot())
		}
		e.mu.Unlock()
	}
	sort.Slice(expired, func(i, j int) bool {
		a, b := expired[i], expired[j]
		if !a.ReservedUntil.Equal(*b.ReservedUntil) {
			return a.ReservedUntil.Before(*b.ReservedUntil)
		}
		return a.ID < b.ID
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	return expired, nil
}

func (r *SeatRepository) theaterEntries(theaterID string) []*seatEntry {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var entries []*seatEntry
	for _, e := range r.db.seats {
		if e.seat.TheaterID == theaterID {
			entries = append(entries, e)
		}
	}
	return entries
}

var _ seat.Repository = (*SeatRepository)(nil)
