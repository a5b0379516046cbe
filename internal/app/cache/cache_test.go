package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisper-bridge/internal/app/model"
	"whisper-bridge/internal/app/testutil"
)

type fakeKV struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.failGet != nil {
		return redis.NewStringResult("", f.failGet)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Close() error { return nil }

func TestKey(t *testing.T) {
	k1, err := Key(strings.NewReader("audio bytes"), "whisper_cpp", "tiny")
	require.NoError(t, err)
	k2, err := Key(strings.NewReader("audio bytes"), "whisper_cpp", "base")
	require.NoError(t, err)
	k3, err := Key(strings.NewReader("audio bytes"), "whisper_cpp", "tiny")
	require.NoError(t, err)
	k4, err := Key(strings.NewReader("audio bytes"), "openai", "tiny")
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, k3)
	assert.NotEqual(t, k1, k4)
	assert.True(t, strings.HasSuffix(k1, ":whisper_cpp:tiny"))
	assert.Len(t, strings.TrimSuffix(k1, ":whisper_cpp:tiny"), 64)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	kv := newFakeKV()
	c := &RedisCache{client: kv}
	ctx := context.Background()

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)

	env := testutil.SampleEnvelope()
	require.NoError(t, c.Set(ctx, "k", &env, time.Hour))
	assert.Equal(t, time.Hour, kv.ttls[keyPrefix+"k"])

	got, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, env.Segments, got.Segments)
}

func TestRedisCacheSkipsErrors(t *testing.T) {
	kv := newFakeKV()
	c := &RedisCache{client: kv}

	require.NoError(t, c.Set(context.Background(), "k", &model.Envelope{Error: "boom", Segments: []model.Segment{}}, time.Hour))
	assert.Empty(t, kv.data)
}

func TestRedisCacheGetFailures(t *testing.T) {
	kv := newFakeKV()
	c := &RedisCache{client: kv}

	kv.data[keyPrefix+"bad"] = "not json"
	_, _, err := c.Get(context.Background(), "bad")
	assert.ErrorContains(t, err, "decode cached envelope")

	kv.failGet = errors.New("connection refused")
	_, hit, err := c.Get(context.Background(), "k")
	assert.False(t, hit)
	assert.ErrorContains(t, err, "connection refused")
}

func TestNoop(t *testing.T) {
	var c ResultCache = Noop{}
	sample := testutil.SampleEnvelope()
	require.NoError(t, c.Set(context.Background(), "k", &sample, time.Minute))
	env, hit, err := c.Get(context.Background(), "k")
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, env)
}
