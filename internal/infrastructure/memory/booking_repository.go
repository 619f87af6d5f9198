package memory

import (
	"context"
	"sort"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
)

// BookingRepository は予約リポジトリのインメモリ実装
type BookingRepository struct {
	db *DB
}

// NewBookingRepository はBookingRepositoryを作成する
func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) GetBySeatID(ctx context.Context, seatID string) (*booking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	b, ok := r.db.bookings[seatID]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

func (r *BookingRepository) ListByHolder(ctx context.Context, holder string, limit, offset int) ([]*booking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	var bookings []*booking.Booking
	for _, b := range r.db.bookings {
		if b.IsOwnedBy(holder) {
			bookings = append(bookings, copyBooking(b))
		}
	}
	r.db.mu.RUnlock()

	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].BookedAt.Equal(bookings[j].BookedAt) {
			return bookings[i].BookedAt.After(bookings[j].BookedAt)
		}
		return bookings[i].ID < bookings[j].ID
	})
	return paginate(bookings, limit, offset), nil
}

func (r *BookingRepository) CountBySeatID(ctx context.Context, seatID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if _, ok := r.db.bookings[seatID]; ok {
		return 1, nil
	}
	return 0, nil
}
