package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SearchCache 搜索结果缓存
type SearchCache interface {
	Get(ctx context.Context, query string) (string, bool)
	Set(ctx context.Context, query, summary string)
}

// MemoryCache 进程内缓存
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache 创建进程内缓存
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(ttl, 2*ttl)}
}

func (m *MemoryCache) Get(_ context.Context, query string) (string, bool) {
	v, ok := m.c.Get(query)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (m *MemoryCache) Set(_ context.Context, query, summary string) {
	m.c.Set(query, summary, gocache.DefaultExpiration)
}

// RedisCache Redis 缓存，多实例部署时共享搜索结果
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func (r *RedisCache) Get(ctx context.Context, query string) (string, bool) {
	v, err := r.client.Get(ctx, key(query)).Result()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("读取搜索缓存失败", zap.Error(err))
		}
		return "", false
	}
	return v, true
}

func (r *RedisCache) Set(ctx context.Context, query, summary string) {
	if err := r.client.Set(ctx, key(query), summary, r.ttl).Err(); err != nil {
		r.logger.Warn("写入搜索缓存失败", zap.Error(err))
	}
}

// Nop 不缓存
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool) { return "", false }
func (Nop) Set(context.Context, string, string)        {}

func key(query string) string {
	return fmt.Sprintf("search_cache:%s", query)
}
