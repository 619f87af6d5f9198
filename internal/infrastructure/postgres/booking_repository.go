package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
)

const bookingColumns = `id, seat_id, holder, theater_id, movie_id, booked_at`

// bookingRow はDBの行を表す構造体
type bookingRow struct {
	ID        string    `db:"id"`
	SeatID    string    `db:"seat_id"`
	Holder    string    `db:"holder"`
	TheaterID string    `db:"theater_id"`
	MovieID   string    `db:"movie_id"`
	BookedAt  time.Time `db:"booked_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID:        r.ID,
		SeatID:    r.SeatID,
		Holder:    r.Holder,
		TheaterID: r.TheaterID,
		MovieID:   r.MovieID,
		BookedAt:  r.BookedAt,
	}
}

// BookingRepository は予約リポジトリのPostgreSQL実装
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository はBookingRepositoryを作成する
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// GetBySeatID は座席IDから予約を取得する
func (r *BookingRepository) GetBySeatID(ctx context.Context, seatID string) (*booking.Booking, error) {
	var row bookingRow
	err := r.db.GetContext(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE seat_id = $1`, seatID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListByHolder は保持者の予約一覧を新しい順で取得する
func (r *BookingRepository) ListByHolder(ctx context.Context, holder string, limit, offset int) ([]*booking.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE holder = $1
		ORDER BY booked_at DESC, id
		LIMIT $2 OFFSET $3
	`
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, holder, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗しました: %w", err)
	}

	bookings := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = row.toEntity()
	}
	return bookings, nil
}

// CountBySeatID は座席を参照する予約件数を取得する
func (r *BookingRepository) CountBySeatID(ctx context.Context, seatID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM bookings WHERE seat_id = $1`, seatID); err != nil {
		if isInvalidID(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("予約件数取得に失敗しました: %w", err)
	}
	return count, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
