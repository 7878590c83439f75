package repositories

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for cached embeddings
	embeddingKeyPrefix = "embedding:"
)

// EmbeddingCache caches embedding vectors by input text, so repeated
// queries and the fixed fallback phrase don't re-hit the embedding API.
type EmbeddingCache interface {
	Get(ctx context.Context, text string) ([]float32, bool)
	Set(ctx context.Context, text string, embedding []float32)
}

// RedisEmbeddingCache implements EmbeddingCache using Redis
type RedisEmbeddingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisEmbeddingCache creates a new Redis-backed embedding cache
func NewRedisEmbeddingCache(client *redis.Client, ttl time.Duration) *RedisEmbeddingCache {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &RedisEmbeddingCache{
		client: client,
		ttl:    ttl,
	}
}

func embeddingKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return embeddingKeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached embedding for text, if present. Cache failures
// are treated as misses; the caller re-embeds.
func (c *RedisEmbeddingCache) Get(ctx context.Context, text string) ([]float32, bool) {
	val, err := c.client.Get(ctx, embeddingKey(text)).Result()
	if err != nil {
		return nil, false
	}

	var embedding []float32
	if err := json.Unmarshal([]byte(val), &embedding); err != nil {
		return nil, false
	}

	return embedding, true
}

// Set stores an embedding for text. Failures are ignored: the cache is an
// optimization, never a source of truth.
func (c *RedisEmbeddingCache) Set(ctx context.Context, text string, embedding []float32) {
	data, err := json.Marshal(embedding)
	if err != nil {
		return
	}
	c.client.Set(ctx, embeddingKey(text), data, c.ttl)
}

// NoopEmbeddingCache is used when Redis is unavailable
type NoopEmbeddingCache struct{}

func (NoopEmbeddingCache) Get(ctx context.Context, text string) ([]float32, bool) { return nil, false }
func (NoopEmbeddingCache) Set(ctx context.Context, text string, embedding []float32) {}
