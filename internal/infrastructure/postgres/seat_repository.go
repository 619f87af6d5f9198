package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
)

const seatColumns = `id, theater_id, seat_number, booked, reserved_by, reserved_until, created_at, updated_at, version`

type seatRow struct {
	ID            string     `db:"id"`
	TheaterID     string     `db:"theater_id"`
	SeatNumber    string     `db:"seat_number"`
	Booked        bool       `db:"booked"`
	ReservedBy    *string    `db:"reserved_by"`
	ReservedUntil *time.Time `db:"reserved_until"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	Version       int        `db:"version"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID: r.ID, TheaterID: r.TheaterID, SeatNumber: r.SeatNumber,
		Booked: r.Booked, ReservedBy: r.ReservedBy, ReservedUntil: r.ReservedUntil,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

// SeatRepository は座席ストアのPostgreSQL実装
//
// 状態遷移はすべて「現在の状態を条件にした UPDATE」1文で行う。
// 同一座席への並行更新は行ロックで直列化され、WHERE 句が再評価されるため
// 読み取りと書き込みの間に他の呼び出しが割り込むことはない。
type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	var row seatRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+seatColumns+` FROM seats WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) ListByTheaterID(ctx context.Context, theaterID string) ([]*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE theater_id = $1 ORDER BY length(seat_number), seat_number`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query, theaterID); err != nil {
		if isInvalidID(err) {
			return []*seat.Seat{}, nil
		}
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

func (r *SeatRepository) CountAvailableByTheaterID(ctx context.Context, theaterID string, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM seats
		WHERE theater_id = $1 AND booked = FALSE
		  AND (reserved_by IS NULL OR reserved_until IS NULL OR reserved_until <= $2)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, theaterID, now); err != nil {
		if isInvalidID(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("空席数取得に失敗: %w", err)
	}
	return count, nil
}

func (r *SeatRepository) CompareAndHold(ctx context.Context, theaterID, seatID, holder string, now, until time.Time) error {
	query := `
		UPDATE seats
		SET reserved_by = $3, reserved_until = $4, updated_at = $5, version = version + 1
		WHERE id = $1 AND theater_id = $2 AND booked = FALSE
		  AND (reserved_by IS NULL OR reserved_until IS NULL OR reserved_until <= $5 OR reserved_by = $3)`
	result, err := r.db.ExecContext(ctx, query, seatID, theaterID, holder, until, now)
	if err != nil {
		if isInvalidID(err) {
			return seat.ErrSeatNotFound
		}
		return fmt.Errorf("座席の仮押さえに失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("仮押さえ結果の確認に失敗: %w", err)
	}
	if rows == 1 {
		return nil
	}

	exists, err := r.existsInTheater(ctx, theaterID, seatID)
	if err != nil {
		return err
	}
	if !exists {
		return seat.ErrSeatNotFound
	}
	return seat.ErrSeatConflict
}

func (r *SeatRepository) FinalizeBooking(ctx context.Context, seatID, holder string, now time.Time) (*booking.Booking, bool, error) {
	var b *booking.Booking
	err := runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var theaterID, movieID string
		err := tx.QueryRowxContext(ctx, `
			UPDATE seats s
			SET booked = TRUE, reserved_by = NULL, reserved_until = NULL, updated_at = $3, version = s.version + 1
			FROM theaters t
			WHERE s.id = $1 AND t.id = s.theater_id AND s.booked = FALSE
			  AND s.reserved_by = $2 AND s.reserved_until > $3
			RETURNING s.theater_id, t.movie_id`, seatID, holder, now).Scan(&theaterID, &movieID)
		if err != nil {
			return err
		}

		b = booking.NewBooking(seatID, holder, theaterID, movieID, now)
		if err := tx.QueryRowxContext(ctx, `
			INSERT INTO bookings (seat_id, holder, theater_id, movie_id, booked_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`, b.SeatID, b.Holder, b.TheaterID, b.MovieID, b.BookedAt).Scan(&b.ID); err != nil {
			if isUniqueViolation(err) {
				return booking.ErrSeatAlreadyBooked
			}
			return fmt.Errorf("予約作成に失敗: %w", err)
		}
		return nil
	})
	switch {
	case err == nil:
		return b, true, nil
	case errors.Is(err, sql.ErrNoRows):
		return r.resolveFinalizeMiss(ctx, seatID, holder)
	case isInvalidID(err):
		return nil, false, seat.ErrSeatNotFound
	case errors.Is(err, booking.ErrSeatAlreadyBooked):
		return r.resolveFinalizeMiss(ctx, seatID, holder)
	default:
		return nil, false, fmt.Errorf("座席の確定に失敗: %w", err)
	}
}

// resolveFinalizeMiss は確定できなかった座席について、
// 同じ保持者による確定済み（冪等）か、競合か、存在しないかを判定する
func (r *SeatRepository) resolveFinalizeMiss(ctx context.Context, seatID, holder string) (*booking.Booking, bool, error) {
	var row bookingRow
	err := r.db.GetContext(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE seat_id = $1`, seatID)
	if err == nil {
		if row.Holder == holder {
			return row.toEntity(), false, nil
		}
		return nil, false, seat.ErrSeatConflict
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("予約確認に失敗: %w", err)
	}

	if _, err := r.GetByID(ctx, seatID); err != nil {
		return nil, false, err
	}
	return nil, false, seat.ErrSeatConflict
}

func (r *SeatRepository) Release(ctx context.Context, theaterID, seatID, holder string) (bool, error) {
	query := `
		UPDATE seats
		SET reserved_by = NULL, reserved_until = NULL, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND theater_id = $2 AND booked = FALSE AND reserved_by = $3`
	return r.execRelease(ctx, query, seatID, theaterID, holder)
}

func (r *SeatRepository) ReleaseIfExpired(ctx context.Context, seatID string, now time.Time) (bool, error) {
	query := `
		UPDATE seats
		SET reserved_by = NULL, reserved_until = NULL, updated_at = $2, version = version + 1
		WHERE id = $1 AND booked = FALSE AND reserved_by IS NOT NULL AND reserved_until <= $2`
	return r.execRelease(ctx, query, seatID, now)
}

func (r *SeatRepository) ListExpired(ctx context.Context, now time.Time, after seat.ExpiredCursor, limit int) ([]*seat.Seat, error) {
	query := `
		SELECT ` + seatColumns + ` FROM seats
		WHERE booked = FALSE AND reserved_by IS NOT NULL AND reserved_until <= $1`
	args := []interface{}{now}
	if !after.IsZero() {
		query += ` AND (reserved_until, id) > ($2, $3)`
		args = append(args, after.ReservedUntil, after.SeatID)
	}
	query += fmt.Sprintf(` ORDER BY reserved_until, id LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("期限切れ座席の取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

func (r *SeatRepository) execRelease(ctx context.Context, query string, args ...interface{}) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isInvalidID(err) {
			return false, seat.ErrSeatNotFound
		}
		return false, fmt.Errorf("座席解放に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("解放結果の確認に失敗: %w", err)
	}
	return rows == 1, nil
}

func (r *SeatRepository) existsInTheater(ctx context.Context, theaterID, seatID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM seats WHERE id = $1 AND theater_id = $2)`, seatID, theaterID); err != nil {
		if isInvalidID(err) {
			return false, nil
		}
		return false, fmt.Errorf("座席の存在確認に失敗: %w", err)
	}
	return exists, nil
}

var _ seat.Repository = (*SeatRepository)(nil)
