package cache

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by Redis for multi-process deployments.
// Values are JSON-serialized with a type tag, so Get hands back the
// same concrete types the memory store would. Values of unregistered
// types come back as json.RawMessage.
type RedisStore struct {
	client *redis.Client
}

type redisEnvelope struct {
	Tag   string          `json:"t,omitempty"`
	Value json.RawMessage `json:"v"`
}

// NewRedisStore connects to Redis at addr (host:port or redis:// URL).
// Returns nil when the connection cannot be established, so callers can
// fall back to the in-process store.
func NewRedisStore(addr string) *RedisStore {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Printf("Redis connection warning: invalid REDIS_URL %q: %v", addr, err)
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (falling back to memory cache)", err)
		return nil
	}

	log.Println("Redis connected successfully")
	return &RedisStore{client: client}
}

func (s *RedisStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 3*time.Second)
}

func (s *RedisStore) Get(key string) (interface{}, bool) {
	ctx, cancel := s.ctx()
	defer cancel()

	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false
	}
	if dest, ok := newOf(env.Tag); ok {
		if err := json.Unmarshal(env.Value, dest); err != nil {
			log.Printf("cache: decode %s failed: %v", key, err)
			return nil, false
		}
		return dest, true
	}
	return env.Value, true
}

func (s *RedisStore) Put(key string, value interface{}, ttl time.Duration) {
	inner, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: marshal %s failed: %v", key, err)
		return
	}
	raw, err := json.Marshal(redisEnvelope{Tag: tagFor(value), Value: inner})
	if err != nil {
		log.Printf("cache: marshal %s failed: %v", key, err)
		return
	}

	ctx, cancel := s.ctx()
	defer cancel()
	if ttl <= 0 {
		ttl = 0 // redis: 0 means no expiry
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("cache: set %s failed: %v", key, err)
	}
}

func (s *RedisStore) Set(key string, update func(old interface{}) interface{}) {
	var old interface{}
	if v, ok := s.Get(key); ok {
		old = v
	}

	next := update(old)
	if next == nil {
		s.Invalidate(key)
		return
	}

	ttl := time.Duration(0)
	ctx, cancel := s.ctx()
	if remaining, err := s.client.TTL(ctx, key).Result(); err == nil && remaining > 0 {
		ttl = remaining
	}
	cancel()

	s.Put(key, next, ttl)
}

func (s *RedisStore) Invalidate(key string) {
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.client.Del(ctx, key).Err(); err != nil {
		log.Printf("cache: del %s failed: %v", key, err)
	}
}
