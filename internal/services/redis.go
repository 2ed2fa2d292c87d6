package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses the URL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// SessionStore tracks live session ids so tokens can be revoked before expiry.
type SessionStore interface {
	Create(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}

type RedisSessionStore struct {
	client redis.Cmdable
}

func NewRedisSessionStore(client redis.Cmdable) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func (s *RedisSessionStore) Create(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(sessionID), userID.String(), ttl).Err()
}

func (s *RedisSessionStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	err := s.client.Get(ctx, sessionKey(sessionID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

// NoopSessionStore is used when Redis is not configured; JWT expiry alone governs sessions.
type NoopSessionStore struct{}

func (NoopSessionStore) Create(context.Context, string, uuid.UUID, time.Duration) error {
	return nil
}

func (NoopSessionStore) Exists(context.Context, string) (bool, error) {
	return true, nil
}

func (NoopSessionStore) Delete(context.Context, string) error {
	return nil
}

// RedisRateLimiter is a fixed-window counter keyed by caller.
type RedisRateLimiter struct {
	client redis.Cmdable
	window time.Duration
}

func NewRedisRateLimiter(client redis.Cmdable, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, window: window}
}

// Allow increments the caller's counter and reports whether it is within limit.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, limit int) (bool, error) {
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(l.window.Seconds()))

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, err
	}
	return incr.Val() <= int64(limit), nil
}
