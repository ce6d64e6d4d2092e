package discovery

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/go-redis/redis/v8"
)

// SortedSetReader is the subset of *redis.Client used for discovery.
type SortedSetReader interface {
	ZRevRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// RedisProvider reads pool addresses from a sorted set ranked by score,
// highest first. The key may contain a {token} placeholder.
type RedisProvider struct {
	client SortedSetReader
	key    string
}

func NewRedisProvider(client SortedSetReader, key string) (*RedisProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("redis key is required")
	}
	return &RedisProvider{client: client, key: key}, nil
}

func (p *RedisProvider) Name() string {
	return "redis"
}

func (p *RedisProvider) Discover(ctx context.Context, q Query) ([]string, error) {
	if q.Limit <= 0 {
		return nil, nil
	}
	key := expandKey(p.key, q.Token)
	pools, err := p.client.ZRevRange(ctx, key, 0, int64(q.Limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", key, err)
	}
	return pools, nil
}

func expandKey(key, token string) string {
	return strings.ReplaceAll(key, "{token}", strings.ToLower(token))
}
