package redis

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/config"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client, err := NewClient(context.Background(), &config.RedisConfig{Host: "localhost", Port: "6379"})
	if err != nil {
		t.Skip("Redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return client
}
