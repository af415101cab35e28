package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const availabilityKeyPrefix = "availability:"

// setIfGeneration записывает месяц, только если поколение товара не изменилось.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisAvailabilityCache хранит рассчитанные свободные дни товара.
// Каждый месяц лежит в отдельном ключе со своим сроком жизни, ключ
// включает поколение товара; Invalidate увеличивает поколение.
type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAvailabilityCache создает новый экземпляр RedisAvailabilityCache.
func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{client: client, ttl: ttl}
}

func generationKey(productId string) string {
	return availabilityKeyPrefix + productId + ":gen"
}

func monthKey(productId string, generation int64, year int, month time.Month) string {
	return fmt.Sprintf("%s%s:%d:%04d-%02d", availabilityKeyPrefix, productId, generation, year, int(month))
}

func (c *RedisAvailabilityCache) generation(ctx context.Context, productId string) (int64, error) {
	generation, err := c.client.Get(ctx, generationKey(productId)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

// Get возвращает закэшированные дни и текущее поколение товара;
// ok=false, если записи нет. Поколение передается в Set после чтения из БД.
func (c *RedisAvailabilityCache) Get(ctx context.Context, productId string, year int, month time.Month) ([]int, int64, bool, error) {
	generation, err := c.generation(ctx, productId)
	if err != nil {
		return nil, 0, false, err
	}

	raw, err := c.client.Get(ctx, monthKey(productId, generation, year, month)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, generation, false, nil
		}
		return nil, 0, false, err
	}

	var days []int
	if err = json.Unmarshal(raw, &days); err != nil {
		return nil, 0, false, fmt.Errorf("corrupted availability entry: %w", err)
	}
	return days, generation, true, nil
}

// Set сохраняет дни месяца, если с момента Get товар не инвалидировали.
// Возвращает false, если запись пропущена.
func (c *RedisAvailabilityCache) Set(ctx context.Context, productId string, generation int64, year int, month time.Month, days []int) (bool, error) {
	raw, err := json.Marshal(days)
	if err != nil {
		return false, err
	}
	keys := []string{generationKey(productId), monthKey(productId, generation, year, month)}
	stored, err := setIfGeneration.Run(ctx, c.client, keys, generation, raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Invalidate делает недоступными все закэшированные месяцы товара.
// Старые ключи истекают по своему сроку жизни.
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, productId string) error {
	return c.client.Incr(ctx, generationKey(productId)).Err()
}
