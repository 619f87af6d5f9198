package theater

import (
	"context"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
)

// Repository は映画・上映回リポジトリのインターフェース
type Repository interface {
	// CreateMovie は新しい映画を作成する
	CreateMovie(ctx context.Context, movie *Movie) error

	// GetMovieByID はIDから映画を取得する
	GetMovieByID(ctx context.Context, id string) (*Movie, error)

	// ListMovies は映画一覧を取得する（search が空でなければ名前で部分一致検索）
	ListMovies(ctx context.Context, search string, limit, offset int) ([]*Movie, error)

	// Create は上映回とその座席を1トランザクションで作成する
	Create(ctx context.Context, theater *Theater, seats []*seat.Seat) error

	// GetByID はIDから上映回を取得する
	GetByID(ctx context.Context, id string) (*Theater, error)

	// ListByMovieID は映画の上映回一覧を上映時刻順で取得する
	ListByMovieID(ctx context.Context, movieID string) ([]*Theater, error)

	// Delete は上映回を削除する（座席・予約もカスケード削除）
	Delete(ctx context.Context, id string) error
}
