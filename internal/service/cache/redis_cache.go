package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "hasharb:snapshot:"

type RedisCache struct {
	cli        *redis.Client
	defaultTTL time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisCache(cfg RedisConfig, defaultTTL time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &RedisCache{cli: rdb, defaultTTL: defaultTTL}
}

func (r *RedisCache) Get(key string) (Snapshot, bool) {
	b, err := r.cli.Get(context.Background(), redisPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, false
	}
	return s, true
}

func (r *RedisCache) Set(key string, v Snapshot) {
	r.SetTTL(key, v, r.defaultTTL)
}

func (r *RedisCache) SetTTL(key string, v Snapshot, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	r.cli.Set(context.Background(), redisPrefix+key, b, ttl)
}

func (r *RedisCache) Clear() {
	keys, err := r.cli.Keys(context.Background(), redisPrefix+"*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	r.cli.Del(context.Background(), keys...)
}

func (r *RedisCache) Size() int {
	keys, err := r.cli.Keys(context.Background(), redisPrefix+"*").Result()
	if err != nil {
		return 0
	}
	return len(keys)
}
