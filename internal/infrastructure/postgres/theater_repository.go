package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
)

const (
	movieColumns   = `id, name, genre, language, rating, cast_members, description, trailer_url, created_at, updated_at`
	theaterColumns = `id, movie_id, name, show_time, ticket_price, created_at, updated_at`
)

// movieRow はDBの行を表す構造体
type movieRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Genre       string    `db:"genre"`
	Language    string    `db:"language"`
	Rating      float64   `db:"rating"`
	Cast        *string   `db:"cast_members"`
	Description *string   `db:"description"`
	TrailerURL  *string   `db:"trailer_url"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *movieRow) toEntity() *theater.Movie {
	return &theater.Movie{
		ID:          r.ID,
		Name:        r.Name,
		Genre:       r.Genre,
		Language:    r.Language,
		Rating:      r.Rating,
		Cast:        deref(r.Cast),
		Description: deref(r.Description),
		TrailerURL:  deref(r.TrailerURL),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type theaterRow struct {
	ID          string    `db:"id"`
	MovieID     string    `db:"movie_id"`
	Name        string    `db:"name"`
	ShowTime    time.Time `db:"show_time"`
	TicketPrice int       `db:"ticket_price"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *theaterRow) toEntity() *theater.Theater {
	return &theater.Theater{
		ID:          r.ID,
		MovieID:     r.MovieID,
		Name:        r.Name,
		ShowTime:    r.ShowTime,
		TicketPrice: r.TicketPrice,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// TheaterRepository は映画・上映回リポジトリのPostgreSQL実装
type TheaterRepository struct {
	db *sqlx.DB
}

// NewTheaterRepository はTheaterRepositoryを作成する
func NewTheaterRepository(db *sqlx.DB) *TheaterRepository {
	return &TheaterRepository{db: db}
}

// CreateMovie は新しい映画を作成する
func (r *TheaterRepository) CreateMovie(ctx context.Context, m *theater.Movie) error {
	query := `
		INSERT INTO movies (name, genre, language, rating, cast_members, description, trailer_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		m.Name, m.Genre, m.Language, m.Rating, nullable(m.Cast), nullable(m.Description), nullable(m.TrailerURL),
		m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("映画作成に失敗しました: %w", err)
	}
	return nil
}

// GetMovieByID はIDから映画を取得する
func (r *TheaterRepository) GetMovieByID(ctx context.Context, id string) (*theater.Movie, error) {
	var row movieRow
	err := r.db.GetContext(ctx, &row, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, theater.ErrMovieNotFound
		}
		return nil, fmt.Errorf("映画取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListMovies は映画一覧を取得する
func (r *TheaterRepository) ListMovies(ctx context.Context, search string, limit, offset int) ([]*theater.Movie, error) {
	query := `
		SELECT ` + movieColumns + `
		FROM movies
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`
	var rows []movieRow
	if err := r.db.SelectContext(ctx, &rows, query, search, limit, offset); err != nil {
		return nil, fmt.Errorf("映画一覧取得に失敗しました: %w", err)
	}

	movies := make([]*theater.Movie, len(rows))
	for i, row := range rows {
		movies[i] = row.toEntity()
	}
	return movies, nil
}

// Create は上映回とその座席を1トランザクションで作成する
func (r *TheaterRepository) Create(ctx context.Context, t *theater.Theater, seats []*seat.Seat) error {
	return runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO theaters (movie_id, name, show_time, ticket_price, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			t.MovieID, t.Name, t.ShowTime, t.TicketPrice, t.CreatedAt, t.UpdatedAt,
		).Scan(&t.ID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
				return theater.ErrMovieNotFound
			}
			if isInvalidID(err) {
				return theater.ErrMovieNotFound
			}
			return fmt.Errorf("上映回作成に失敗しました: %w", err)
		}

		if len(seats) == 0 {
			return nil
		}

		numbers := make([]string, len(seats))
		for i, s := range seats {
			s.TheaterID = t.ID
			numbers[i] = s.SeatNumber
		}

		// 座席番号の配列を unnest して一括挿入し、返ってきたIDを座席番号で対応付ける
		rows, err := tx.QueryxContext(ctx, `
			INSERT INTO seats (theater_id, seat_number, created_at, updated_at)
			SELECT $1, n, $3, $3 FROM unnest($2::text[]) AS n
			RETURNING id, seat_number`,
			t.ID, pq.Array(numbers), t.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return theater.ErrDuplicateSeatNumber
			}
			return fmt.Errorf("座席作成に失敗しました: %w", err)
		}
		defer rows.Close()

		ids := make(map[string]string, len(seats))
		for rows.Next() {
			var id, number string
			if err := rows.Scan(&id, &number); err != nil {
				return fmt.Errorf("座席ID取得に失敗しました: %w", err)
			}
			ids[number] = id
		}
		if err := rows.Err(); err != nil {
			if isUniqueViolation(err) {
				return theater.ErrDuplicateSeatNumber
			}
			return fmt.Errorf("座席作成に失敗しました: %w", err)
		}

		for _, s := range seats {
			s.ID = ids[s.SeatNumber]
			s.CreatedAt = t.CreatedAt
			s.UpdatedAt = t.CreatedAt
		}
		return nil
	})
}

// GetByID はIDから上映回を取得する
func (r *TheaterRepository) GetByID(ctx context.Context, id string) (*theater.Theater, error) {
	var row theaterRow
	err := r.db.GetContext(ctx, &row, `SELECT `+theaterColumns+` FROM theaters WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, theater.ErrTheaterNotFound
		}
		return nil, fmt.Errorf("上映回取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListByMovieID は映画の上映回一覧を上映時刻順で取得する
func (r *TheaterRepository) ListByMovieID(ctx context.Context, movieID string) ([]*theater.Theater, error) {
	query := `SELECT ` + theaterColumns + ` FROM theaters WHERE movie_id = $1 ORDER BY show_time, id`
	var rows []theaterRow
	if err := r.db.SelectContext(ctx, &rows, query, movieID); err != nil {
		if isInvalidID(err) {
			return []*theater.Theater{}, nil
		}
		return nil, fmt.Errorf("上映回一覧取得に失敗しました: %w", err)
	}

	theaters := make([]*theater.Theater, len(rows))
	for i, row := range rows {
		theaters[i] = row.toEntity()
	}
	return theaters, nil
}

// Delete は上映回を削除する
func (r *TheaterRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM theaters WHERE id = $1`, id)
	if err != nil {
		if isInvalidID(err) {
			return theater.ErrTheaterNotFound
		}
		return fmt.Errorf("上映回削除に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	if rows == 0 {
		return theater.ErrTheaterNotFound
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ theater.Repository = (*TheaterRepository)(nil)
