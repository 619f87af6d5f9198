// Package memory は座席ストアのインメモリ実装を提供する
//
// PostgreSQL 実装と同じアトミック契約を満たす。座席ごとのミューテックスで
// 判定と書き込みを1つのクリティカルセクションにまとめている。
// テスト、E2E、および STORAGE_DRIVER=memory での起動に使う。
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
)

// seatEntry は1座席分の状態とそのロック
type seatEntry struct {
	mu   sync.Mutex
	seat seat.Seat
}

// DB は各リポジトリが共有するインメモリの状態
//
// ロック順序: seatEntry.mu → DB.mu（書き込み）の順でのみ取得する
type DB struct {
	mu       sync.RWMutex
	movies   map[string]*theater.Movie
	theaters map[string]*theater.Theater
	seats    map[string]*seatEntry
	bookings map[string]*booking.Booking // seatID -> booking
}

// NewDB は空のインメモリDBを作成する
func NewDB() *DB {
	return &DB{
		movies:   make(map[string]*theater.Movie),
		theaters: make(map[string]*theater.Theater),
		seats:    make(map[string]*seatEntry),
		bookings: make(map[string]*booking.Booking),
	}
}

// Ping はヘルスチェック用。インメモリDBは常に利用可能
func (db *DB) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (db *DB) entry(id string) (*seatEntry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	e, ok := db.seats[id]
	return e, ok
}

func newID() string {
	return uuid.New().String()
}

func copyMovie(m *theater.Movie) *theater.Movie {
	c := *m
	return &c
}

func copyTheater(t *theater.Theater) *theater.Theater {
	c := *t
	return &c
}

func copyBooking(b *booking.Booking) *booking.Booking {
	c := *b
	return &c
}

// snapshot はロック保持中に呼び出す
func (e *seatEntry) snapshot() *seat.Seat {
	c := e.seat
	if e.seat.ReservedBy != nil {
		holder := *e.seat.ReservedBy
		c.ReservedBy = &holder
	}
	if e.seat.ReservedUntil != nil {
		until := *e.seat.ReservedUntil
		c.ReservedUntil = &until
	}
	return &c
}
