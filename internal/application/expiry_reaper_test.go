package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/infrastructure/memory"
)

func TestExpiryReaper_ReleaseExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("期限切れの仮押さえのみ解放する", func(t *testing.T) {
		env := setupMemoryEnv(t, 5)
		env.hold(t, "alice", env.seatIDs[0], env.seatIDs[1], env.seatIDs[2])
		env.clock.Advance(3 * time.Minute)
		env.hold(t, "bob", env.seatIDs[3])
		env.clock.Advance(2 * time.Minute)

		// バッチサイズ2で3件を回収する
		count, err := env.reaper.ReleaseExpired(ctx, env.clock.Now())
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		for _, id := range env.seatIDs[:3] {
			s := env.seat(t, id)
			assert.Nil(t, s.ReservedBy)
			assert.Nil(t, s.ReservedUntil)
		}
		assert.True(t, env.seat(t, env.seatIDs[3]).IsHeldBy("bob", env.clock.Now()))
	})

	t.Run("確定済みの座席は解放しない", func(t *testing.T) {
		env := setupMemoryEnv(t, 1)
		env.hold(t, "alice", env.seatIDs...)
		_, err := env.finalizer.Finalize(ctx, FinalizeInput{Holder: "alice", SeatIDs: env.seatIDs})
		require.NoError(t, err)

		count, err := env.reaper.ReleaseExpired(ctx, baseTime.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.True(t, env.seat(t, env.seatIDs[0]).Booked)
	})

	t.Run("2回目の実行は0件", func(t *testing.T) {
		env := setupMemoryEnv(t, 1)
		env.hold(t, "alice", env.seatIDs...)
		now := baseTime.Add(10 * time.Minute)

		count, err := env.reaper.ReleaseExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = env.reaper.ReleaseExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestExpiryReaper_ContinuesPastSeatErrors(t *testing.T) {
	mockSeatRepo := new(MockSeatRepository)
	mockCache := new(MockSeatCache)
	now := baseTime

	expired := []*seat.Seat{
		{ID: "s1", TheaterID: "theater-1"},
		{ID: "s2", TheaterID: "theater-1"},
		{ID: "s3", TheaterID: "theater-2"},
	}
	mockSeatRepo.On("ListExpired", mock.Anything, now, seat.ExpiredCursor{}, 10).Return(expired, nil)
	mockSeatRepo.On("ReleaseIfExpired", mock.Anything, "s1", now).Return(true, nil)
	mockSeatRepo.On("ReleaseIfExpired", mock.Anything, "s2", now).Return(false, errors.New("deadlock detected"))
	mockSeatRepo.On("ReleaseIfExpired", mock.Anything, "s3", now).Return(true, nil)
	mockCache.On("Invalidate", mock.Anything, mock.MatchedBy(func(ids []string) bool {
		sorted := append([]string(nil), ids...)
		sort.Strings(sorted)
		return len(sorted) == 2 && sorted[0] == "theater-1" && sorted[1] == "theater-2"
	})).Return(nil)

	reaper := NewExpiryReaper(mockSeatRepo, mockCache, 10)
	count, err := reaper.ReleaseExpired(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	mockSeatRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestExpiryReaper_ListFailure(t *testing.T) {
	mockSeatRepo := new(MockSeatRepository)
	mockSeatRepo.On("ListExpired", mock.Anything, baseTime, seat.ExpiredCursor{}, defaultReaperBatchSize).Return(nil, errors.New("connection refused"))

	reaper := NewExpiryReaper(mockSeatRepo, nil, 0)
	count, err := reaper.ReleaseExpired(context.Background(), baseTime)

	assert.Error(t, err)
	assert.Equal(t, 0, count)
}

func TestExpiryReaper_StopsWhenOnlyFailuresRemain(t *testing.T) {
	mockSeatRepo := new(MockSeatRepository)
	until := baseTime.Add(-time.Minute)
	expired := []*seat.Seat{
		{ID: "s1", TheaterID: "theater-1", ReservedUntil: &until},
		{ID: "s2", TheaterID: "theater-1", ReservedUntil: &until},
	}
	mockSeatRepo.On("ListExpired", mock.Anything, baseTime, seat.ExpiredCursor{}, 2).Return(expired, nil)
	mockSeatRepo.On("ListExpired", mock.Anything, baseTime, seat.ExpiredCursor{ReservedUntil: until, SeatID: "s2"}, 2).Return([]*seat.Seat{}, nil)
	mockSeatRepo.On("ReleaseIfExpired", mock.Anything, mock.Anything, baseTime).Return(false, errors.New("timeout"))

	reaper := NewExpiryReaper(mockSeatRepo, nil, 2)
	count, err := reaper.ReleaseExpired(context.Background(), baseTime)

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	mockSeatRepo.AssertNumberOfCalls(t, "ListExpired", 2)
	mockSeatRepo.AssertNumberOfCalls(t, "ReleaseIfExpired", 2)
}

// failingReleaseRepo は指定した座席の期限切れ解放だけを失敗させる
type failingReleaseRepo struct {
	*memory.SeatRepository
	failing map[string]bool
}

func (r *failingReleaseRepo) ReleaseIfExpired(ctx context.Context, seatID string, now time.Time) (bool, error) {
	if r.failing[seatID] {
		return false, errors.New("row lock timeout")
	}
	return r.SeatRepository.ReleaseIfExpired(ctx, seatID, now)
}

func TestExpiryReaper_ReleasesSeatsBehindFailedBatch(t *testing.T) {
	ctx := context.Background()
	env := setupMemoryEnv(t, 3)

	// 期限の早い順に seat0, seat1, seat2
	for _, id := range env.seatIDs {
		env.hold(t, "alice", id)
		env.clock.Advance(time.Second)
	}
	env.clock.Advance(10 * time.Minute)

	repo := &failingReleaseRepo{
		SeatRepository: env.seats,
		failing:        map[string]bool{env.seatIDs[0]: true, env.seatIDs[1]: true},
	}
	reaper := NewExpiryReaper(repo, nil, 2)

	count, err := reaper.ReleaseExpired(ctx, env.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, count, "失敗した座席の後ろにある期限切れ座席も解放される")
	assert.Equal(t, seat.StateFree, env.seat(t, env.seatIDs[2]).StateAt(env.clock.Now()))
	assert.NotNil(t, env.seat(t, env.seatIDs[0]).ReservedBy, "失敗した座席は残る")

	t.Run("バッチサイズ1でも1件の失敗で止まらない", func(t *testing.T) {
		env := setupMemoryEnv(t, 2)
		for _, id := range env.seatIDs {
			env.hold(t, "bob", id)
			env.clock.Advance(time.Second)
		}
		env.clock.Advance(10 * time.Minute)

		repo := &failingReleaseRepo{SeatRepository: env.seats, failing: map[string]bool{env.seatIDs[0]: true}}
		count, err := NewExpiryReaper(repo, nil, 1).ReleaseExpired(ctx, env.clock.Now())
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestExpiryReaper_ConcurrentWithHoldAndFinalize(t *testing.T) {
	ctx := context.Background()
	env := setupMemoryEnv(t, 20)

	// 全席を期限切れにしたうえで、回収と再仮押さえ・確定を同時に走らせる
	env.hold(t, "stale", env.seatIDs...)
	env.clock.Advance(10 * time.Minute)
	now := env.clock.Now()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := env.reaper.ReleaseExpired(ctx, now)
		assert.NoError(t, err)
	}()
	for i, id := range env.seatIDs {
		wg.Add(1)
		go func(n int, seatID string) {
			defer wg.Done()
			holder := holderName(n)
			res, err := env.manager.Hold(ctx, HoldInput{TheaterID: env.theater.ID, SeatIDs: []string{seatID}, Holder: holder})
			if !assert.NoError(t, err) || len(res.Held) == 0 {
				return
			}
			if n%2 == 0 {
				_, err := env.finalizer.Finalize(ctx, FinalizeInput{Holder: holder, SeatIDs: []string{seatID}})
				assert.NoError(t, err)
			}
		}(i, id)
	}
	wg.Wait()

	// 新しい保持者の仮押さえ・確定は回収で失われない
	for i, id := range env.seatIDs {
		s := env.seat(t, id)
		if i%2 == 0 {
			assert.True(t, s.Booked, "確定済みのはず: %s", id)
		} else {
			assert.True(t, s.IsHeldBy(holderName(i), now), "仮押さえが残っているはず: %s", id)
		}
	}
}
