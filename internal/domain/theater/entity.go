package theater

import (
	"regexp"
	"strings"
	"time"
)

// Movie は映画エンティティを表す
type Movie struct {
	ID          string
	Name        string
	Genre       string
	Language    string
	Rating      float64
	Cast        string
	Description string
	TrailerURL  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Theater は映画の上映回（スクリーン＋上映時刻）を表す
// 座席は Theater に属し、Theater の削除とともに削除される
type Theater struct {
	ID          string
	MovieID     string
	Name        string
	ShowTime    time.Time
	TicketPrice int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// 対応ジャンルと言語
var (
	Genres    = []string{"Action", "Comedy", "Drama", "Romance", "Thriller"}
	Languages = []string{"English", "Hindi", "Tamil", "Telugu"}
)

var youtubeIDPattern = regexp.MustCompile(`(?:v=|youtu\.be/)([^&?/]+)`)

// NewMovie は新しい映画を作成する
func NewMovie(name, genre, language string, rating float64, cast, description, trailerURL string) *Movie {
	now := time.Now()
	return &Movie{
		Name:        name,
		Genre:       genre,
		Language:    language,
		Rating:      rating,
		Cast:        cast,
		Description: description,
		TrailerURL:  trailerURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate は映画の検証を行う
func (m *Movie) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrMovieNameRequired
	}
	if !contains(Genres, m.Genre) {
		return ErrInvalidGenre
	}
	if !contains(Languages, m.Language) {
		return ErrInvalidLanguage
	}
	if m.Rating < 0 || m.Rating > 10 {
		return ErrInvalidRating
	}
	return nil
}

// TrailerEmbedURL は YouTube の予告編URLから埋め込み用URLを生成する
// 解析できない場合は空文字を返す
func (m *Movie) TrailerEmbedURL() string {
	if m.TrailerURL == "" {
		return ""
	}
	match := youtubeIDPattern.FindStringSubmatch(m.TrailerURL)
	if match == nil {
		return ""
	}
	return "https://www.youtube-nocookie.com/embed/" + match[1] + "?rel=0&modestbranding=1"
}

// NewTheater は新しい上映回を作成する
func NewTheater(movieID, name string, showTime time.Time, ticketPrice int) *Theater {
	now := time.Now()
	return &Theater{
		MovieID:     movieID,
		Name:        name,
		ShowTime:    showTime,
		TicketPrice: ticketPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate は上映回の検証を行う
func (t *Theater) Validate() error {
	if t.MovieID == "" {
		return ErrMovieIDRequired
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrTheaterNameRequired
	}
	if t.ShowTime.IsZero() {
		return ErrShowTimeRequired
	}
	if t.TicketPrice < 0 {
		return ErrInvalidTicketPrice
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
