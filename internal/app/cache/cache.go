// Package cache keeps successful transcription envelopes keyed by audio content and model.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"whisper-bridge/internal/app/model"
)

const keyPrefix = "whisper-bridge:result:"

// ResultCache stores envelopes. A miss is (nil, false, nil).
type ResultCache interface {
	Get(ctx context.Context, key string) (*model.Envelope, bool, error)
	Set(ctx context.Context, key string, env *model.Envelope, ttl time.Duration) error
	Close() error
}

// Key hashes the audio and appends the engine and model, so servers running
// different engines against one redis never share results.
func Key(audio io.Reader, engine, modelName string) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, audio); err != nil {
		return "", fmt.Errorf("hash audio: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)) + ":" + engine + ":" + modelName, nil
}

// Noop never hits.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) (*model.Envelope, bool, error) { return nil, false, nil }
func (Noop) Set(ctx context.Context, key string, env *model.Envelope, ttl time.Duration) error {
	return nil
}
func (Noop) Close() error { return nil }

// kv is the part of the redis client the cache uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisCache stores envelopes as JSON strings.
type RedisCache struct {
	client kv
}

// NewRedisCache connects using a redis:// URL and pings the server.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*model.Envelope, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("decode cached envelope: %w", err)
	}
	if env.Segments == nil {
		env.Segments = []model.Segment{}
	}
	return &env, true, nil
}

// Set refuses to store envelopes that carry an error.
func (c *RedisCache) Set(ctx context.Context, key string, env *model.Envelope, ttl time.Duration) error {
	if env == nil || env.HasError() {
		return nil
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+key, data, ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
