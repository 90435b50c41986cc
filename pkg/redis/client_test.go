package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okestore/storefront-sync/pkg/config"
)

func TestIncrWithTTLArmsExpiryOnFirstHit(t *testing.T) {
	ctx := context.Background()
	mock := newMockCommands()
	client := &Client{cmd: mock}

	count, err := client.IncrWithTTL(ctx, "k", 1500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = client.IncrWithTTL(ctx, "k", 1500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	assert.Equal(t, []int64{1500}, mock.expiries["k"])
}

func TestDeleteIfValue(t *testing.T) {
	ctx := context.Background()
	client := &Client{cmd: newMockCommands()}

	ok, err := client.SetNX(ctx, "lock", "owner-a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	deleted, err := client.DeleteIfValue(ctx, "lock", "owner-b")
	require.NoError(t, err)
	assert.False(t, deleted, "a different owner must not release the key")

	deleted, err = client.DeleteIfValue(ctx, "lock", "owner-a")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = client.Get(ctx, "lock")
	assert.ErrorIs(t, err, Nil)
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	client := &Client{cmd: newMockCommands()}
	key := client.LocalKey("okFutureZoneCartItems")

	require.NoError(t, client.Set(ctx, key, "[]", 0))
	value, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "[]", value)

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	assert.ErrorIs(t, err, Nil)
}

func TestUnconnectedClientFails(t *testing.T) {
	var client *Client
	assert.ErrorIs(t, client.Ping(context.Background()), errNotConnected)
	_, err := (&Client{}).IncrWithTTL(context.Background(), "k", time.Second)
	assert.ErrorIs(t, err, errNotConnected)
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "okestore:idempotency:scope:id", client.IdempotencyKey("scope", "id"))
	assert.Equal(t, "okestore:rate_limit:scope", client.RateLimitKey("scope"))
	assert.Equal(t, "okestore:local:okFutureZoneWishlist", client.LocalKey("okFutureZoneWishlist"))

	named := &Client{namespace: "tenant"}
	assert.Equal(t, "tenant:lock:approvals", named.LockKey("approvals"))
	assert.Equal(t, "tenant:idempotency:scope", named.IdempotencyKey("scope", " "))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6380/2", PoolSize: 7, DB: 5})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB, "the url database wins")
	assert.Equal(t, 7, opts.PoolSize)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 3})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 3, opts.DB)
}

// mockCommands is an in-memory stand-in that understands the client's two scripts.
type mockCommands struct {
	data     map[string]string
	counters map[string]int64
	expiries map[string][]int64
}

func newMockCommands() *mockCommands {
	return &mockCommands{
		data:     make(map[string]string),
		counters: make(map[string]int64),
		expiries: make(map[string][]int64),
	}
}

func (m *mockCommands) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCommands) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCommands) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCommands) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCommands) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			n++
		}
		delete(m.data, key)
	}
	return redis.NewIntResult(n, nil)
}

func (m *mockCommands) EvalSha(_ context.Context, sha string, keys []string, args ...any) *redis.Cmd {
	key := keys[0]
	switch sha {
	case incrExpire.Hash():
		m.counters[key]++
		if ttl := args[0].(int64); m.counters[key] == 1 && ttl > 0 {
			m.expiries[key] = append(m.expiries[key], ttl)
		}
		return redis.NewCmdResult(m.counters[key], nil)
	case deleteIfValue.Hash():
		if v, ok := m.data[key]; ok && v == args[0] {
			delete(m.data, key)
			return redis.NewCmdResult(int64(1), nil)
		}
		return redis.NewCmdResult(int64(0), nil)
	}
	return redis.NewCmdResult(nil, errors.New("unexpected script"))
}

func (m *mockCommands) Eval(ctx context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	return redis.NewCmdResult(nil, errors.New("NOSCRIPT eval not supported by mock"))
}

func (m *mockCommands) EvalRO(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return m.Eval(ctx, script, keys, args...)
}

func (m *mockCommands) EvalShaRO(ctx context.Context, sha string, keys []string, args ...any) *redis.Cmd {
	return m.EvalSha(ctx, sha, keys, args...)
}

func (m *mockCommands) ScriptExists(_ context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (m *mockCommands) ScriptLoad(context.Context, string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}
