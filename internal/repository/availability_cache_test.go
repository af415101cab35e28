package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func resetProduct(t *testing.T, client *redis.Client, productId string) {
	t.Helper()
	ctx := context.Background()
	keys, err := client.Keys(ctx, availabilityKeyPrefix+productId+":*").Result()
	require.NoError(t, err)
	if len(keys) > 0 {
		require.NoError(t, client.Del(ctx, keys...).Err())
	}
}

func TestAvailabilityCache_SetGet(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	cache := NewRedisAvailabilityCache(client, time.Minute)
	productId := "test-product-set-get"
	resetProduct(t, client, productId)

	_, generation, ok, err := cache.Get(ctx, productId, 2024, time.March)
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, generation)

	stored, err := cache.Set(ctx, productId, generation, 2024, time.March, []int{1, 2, 16, 31})
	require.NoError(t, err)
	require.True(t, stored)

	days, _, ok, err := cache.Get(ctx, productId, 2024, time.March)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []int{1, 2, 16, 31}, days)

	ttl := client.TTL(ctx, monthKey(productId, generation, 2024, time.March)).Val()
	require.Greater(t, ttl, time.Duration(0))
}

func TestAvailabilityCache_EmptyMonthIsCached(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	cache := NewRedisAvailabilityCache(client, time.Minute)
	productId := "test-product-empty"
	resetProduct(t, client, productId)

	_, err := cache.Set(ctx, productId, 0, 2024, time.February, []int{})
	require.NoError(t, err)

	days, _, ok, err := cache.Get(ctx, productId, 2024, time.February)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, days)
}

func TestAvailabilityCache_Invalidate(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	cache := NewRedisAvailabilityCache(client, time.Minute)
	productId := "test-product-invalidate"
	resetProduct(t, client, productId)

	_, err := cache.Set(ctx, productId, 0, 2024, time.March, []int{1})
	require.NoError(t, err)
	_, err = cache.Set(ctx, productId, 0, 2024, time.April, []int{2})
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, productId))

	_, generation, ok, err := cache.Get(ctx, productId, 2024, time.March)
	require.NoError(t, err)
	require.False(t, ok)
	require.EqualValues(t, 1, generation)
	_, _, ok, err = cache.Get(ctx, productId, 2024, time.April)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAvailabilityCache_SetAfterInvalidateIsSkipped(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	cache := NewRedisAvailabilityCache(client, time.Minute)
	productId := "test-product-stale-write"
	resetProduct(t, client, productId)

	_, generation, ok, err := cache.Get(ctx, productId, 2024, time.March)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Invalidate(ctx, productId))

	stored, err := cache.Set(ctx, productId, generation, 2024, time.March, []int{10, 11})
	require.NoError(t, err)
	require.False(t, stored)

	_, _, ok, err = cache.Get(ctx, productId, 2024, time.March)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAvailabilityCache_MonthsExpireIndependently(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	cache := NewRedisAvailabilityCache(client, time.Minute)
	productId := "test-product-ttl"
	resetProduct(t, client, productId)

	_, err := cache.Set(ctx, productId, 0, 2024, time.March, []int{1})
	require.NoError(t, err)
	march := monthKey(productId, 0, 2024, time.March)
	require.NoError(t, client.PExpire(ctx, march, 50*time.Millisecond).Err())

	_, err = cache.Set(ctx, productId, 0, 2024, time.April, []int{2})
	require.NoError(t, err)
	require.LessOrEqual(t, client.PTTL(ctx, march).Val(), 50*time.Millisecond)
}
