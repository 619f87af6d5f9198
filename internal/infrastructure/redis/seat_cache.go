package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// DefaultAvailableCountTTL は空席数キャッシュの既定TTL
const DefaultAvailableCountTTL = 30 * time.Second

// SeatCache は上映回ごとの空席数キャッシュ
//
// 表示用の近似値であり、仮押さえ・確定の判定には使わない。
type SeatCache struct {
	client *redis.Client
}

// NewSeatCache は新しいSeatCacheインスタンスを作成する
func NewSeatCache(client *redis.Client) *SeatCache {
	return &SeatCache{client: client}
}

// GetAvailableCount は上映回の空席数をキャッシュから取得する
func (c *SeatCache) GetAvailableCount(ctx context.Context, theaterID string) (int, error) {
	val, err := c.client.Get(ctx, availableCountKey(theaterID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableCount は上映回の空席数をキャッシュに保存する
func (c *SeatCache) SetAvailableCount(ctx context.Context, theaterID string, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, availableCountKey(theaterID), count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は上映回のキャッシュを無効化する
func (c *SeatCache) Invalidate(ctx context.Context, theaterIDs ...string) error {
	if len(theaterIDs) == 0 {
		return nil
	}
	keys := make([]string, len(theaterIDs))
	for i, id := range theaterIDs {
		keys[i] = availableCountKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func availableCountKey(theaterID string) string {
	return fmt.Sprintf("seats:available:%s", theaterID)
}
