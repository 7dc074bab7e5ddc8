package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"duel/internal/models"
)

const vocabKeyPrefix = "vocab:"

// RedisCache stores vocabulary sets as JSON values with a TTL.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func vocabKey(topic, language, difficulty string) string {
	return fmt.Sprintf("%s%s:%s:%s", vocabKeyPrefix, topic, language, difficulty)
}

func (c *RedisCache) Get(ctx context.Context, topic, language, difficulty string) ([]models.VocabWord, bool, error) {
	data, err := c.rdb.Get(ctx, vocabKey(topic, language, difficulty)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("vocab cache get: %w", err)
	}

	var words []models.VocabWord
	if err := json.Unmarshal(data, &words); err != nil {
		// A corrupt entry is treated as a miss so the generator can repopulate it.
		return nil, false, nil
	}
	return words, true, nil
}

func (c *RedisCache) Set(ctx context.Context, topic, language, difficulty string, words []models.VocabWord) error {
	data, err := json.Marshal(words)
	if err != nil {
		return fmt.Errorf("vocab cache marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, vocabKey(topic, language, difficulty), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("vocab cache set: %w", err)
	}
	return nil
}
