package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/config"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
)

func TestOpen(t *testing.T) {
	t.Run("memoryドライバーでインメモリストアを返す", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Driver: "memory"}}

		store, err := Open(context.Background(), cfg)
		require.NoError(t, err)
		defer store.Close()

		assert.NoError(t, store.Ping(context.Background()))
		assert.NotNil(t, store.Seats)
		assert.NotNil(t, store.Theaters)
		assert.NotNil(t, store.Bookings)
	})

	t.Run("未対応のドライバーはエラー", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Driver: "sqlite"}}

		_, err := Open(context.Background(), cfg)
		assert.Error(t, err)
	})
}

func TestNewMemory_SharesState(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	m := theater.NewMovie("Interstellar", "Drama", "English", 8.6, "", "", "")
	require.NoError(t, store.Theaters.CreateMovie(ctx, m))

	th := theater.NewTheater(m.ID, "Screen 1", m.CreatedAt, 1800)
	require.NoError(t, store.Theaters.Create(ctx, th, []*seat.Seat{seat.NewSeat("", "A1")}))

	// 同じDBを共有するリポジトリから座席が見える
	seats, err := store.Seats.ListByTheaterID(ctx, th.ID)
	require.NoError(t, err)
	assert.Len(t, seats, 1)
}
