package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"clientconsole-backend/shared/config"
)

// CacheManager wraps the Redis client used to cache client list pages.
// It is passed explicitly to whoever needs it; a nil manager disables caching.
type CacheManager struct {
	client *redis.Client
	ctx    context.Context
}

// ClientListTTL bounds how stale a cached list page can get if an
// invalidation is missed
var ClientListTTL = 5 * time.Minute

const clientListPrefix = "clients:list:"

// NewCacheManager connects to Redis and returns a cache manager
func NewCacheManager() (*CacheManager, error) {
	cfg := config.GetConfig()

	redisDB, err := strconv.Atoi(cfg.RedisDB)
	if err != nil {
		log.Printf("❌ Invalid Redis DB number: %s, using default 0", cfg.RedisDB)
		redisDB = 0
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       redisDB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("✅ Redis Cache Manager initialized successfully - %s:%s DB:%d",
		cfg.RedisHost, cfg.RedisPort, redisDB)

	return &CacheManager{
		client: client,
		ctx:    ctx,
	}, nil
}

// ClientListKey builds the cache key for one list page
func ClientListKey(search, status, category string, page, limit int) string {
	return fmt.Sprintf("%ss=%s|st=%s|c=%s|p=%d|l=%d", clientListPrefix, search, status, category, page, limit)
}

// GetClientList returns the cached JSON for a list page, or "" on miss
func (cm *CacheManager) GetClientList(key string) string {
	value, err := cm.client.Get(cm.ctx, key).Result()
	if err != nil {
		return ""
	}
	return value
}

// SetClientList caches the JSON for a list page
func (cm *CacheManager) SetClientList(key, value string) {
	if err := cm.client.Set(cm.ctx, key, value, ClientListTTL).Err(); err != nil {
		log.Printf("❌ Failed to cache client list page: %v", err)
	}
}

// InvalidateClientLists drops every cached list page. Called after any
// client mutation so no page serves stale rows.
func (cm *CacheManager) InvalidateClientLists() {
	iter := cm.client.Scan(cm.ctx, 0, clientListPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(cm.ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("❌ Failed to scan client list cache keys: %v", err)
		return
	}
	if len(keys) > 0 {
		if err := cm.client.Del(cm.ctx, keys...).Err(); err != nil {
			log.Printf("❌ Failed to invalidate client list cache: %v", err)
		}
	}
}

// Close releases the Redis connection
func (cm *CacheManager) Close() error {
	return cm.client.Close()
}
