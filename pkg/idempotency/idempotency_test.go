package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgredis "github.com/okestore/storefront-sync/pkg/redis"
)

var (
	_ MarkStore                 = (*pkgredis.Client)(nil)
	_ pkgredis.IdempotencyStore = (*memStore)(nil)
)

type memStore struct {
	marks   map[string]any
	ttls    map[string]time.Duration
	setErr  error
	delErr  error
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{marks: map[string]any{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	v, _ := m.marks[key].(string)
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.marks[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if m.setErr != nil {
		return false, m.setErr
	}
	if _, ok := m.marks[key]; ok {
		return false, nil
	}
	m.marks[key] = value
	m.ttls[key] = ttl
	return true, nil
}

func (m *memStore) IdempotencyKey(scope, id string) string {
	return "okestore:idempotency:" + scope + ":" + id
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	if m.delErr != nil {
		return m.delErr
	}
	for _, k := range keys {
		delete(m.marks, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

func newTestManager(t *testing.T, store *memStore) *Manager {
	t.Helper()
	m, err := NewManager(store, 24*time.Hour)
	require.NoError(t, err)
	m.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return m
}

func TestCheckAndMarkProcessed(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store)
	ctx := context.Background()
	eventID := uuid.New()

	seen, err := m.CheckAndMarkProcessed(ctx, "verification-approvals", eventID)
	require.NoError(t, err)
	assert.False(t, seen)

	key := "okestore:idempotency:evt:processed:verification-approvals:" + eventID.String()
	assert.Equal(t, "2026-03-01T09:30:00Z", store.marks[key])
	assert.Equal(t, 24*time.Hour, store.ttls[key])

	seen, err = m.CheckAndMarkProcessed(ctx, "verification-approvals", eventID)
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = m.CheckAndMarkProcessed(ctx, "verification-audit", eventID)
	require.NoError(t, err)
	assert.False(t, seen, "marks are per consumer")
}

func TestInputsAreValidated(t *testing.T) {
	m := newTestManager(t, newMemStore())
	_, err := m.CheckAndMarkProcessed(context.Background(), "", uuid.New())
	assert.Error(t, err)
	_, err = m.CheckAndMarkProcessed(context.Background(), "verification-approvals", uuid.Nil)
	assert.Error(t, err)
	assert.Error(t, m.Delete(context.Background(), "", uuid.New()))

	_, err = NewManager(nil, time.Hour)
	assert.Error(t, err)
	_, err = NewManager(newMemStore(), -time.Second)
	assert.Error(t, err)
}

func TestDoRunsOnce(t *testing.T) {
	m := newTestManager(t, newMemStore())
	eventID := uuid.New()
	runs := 0
	fn := func(context.Context) error { runs++; return nil }

	dup, err := m.Do(context.Background(), "verification-approvals", eventID, fn)
	require.NoError(t, err)
	assert.False(t, dup)

	dup, err = m.Do(context.Background(), "verification-approvals", eventID, fn)
	require.NoError(t, err)
	assert.True(t, dup)
	assert.Equal(t, 1, runs)
}

func TestDoReleasesMarkOnFailure(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store)
	eventID := uuid.New()
	boom := errors.New("firestore unavailable")

	_, err := m.Do(context.Background(), "verification-approvals", eventID, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrStore)
	assert.Empty(t, store.marks)
	assert.Len(t, store.deleted, 1)

	dup, err := m.Do(context.Background(), "verification-approvals", eventID, func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.False(t, dup, "redelivery runs again after a failure")
}

func TestDoStoreFailures(t *testing.T) {
	store := newMemStore()
	store.setErr = errors.New("redis down")
	m := newTestManager(t, store)

	ran := false
	_, err := m.Do(context.Background(), "verification-audit", uuid.New(), func(context.Context) error { ran = true; return nil })
	require.ErrorIs(t, err, ErrStore)
	assert.False(t, ran)

	store.setErr = nil
	store.delErr = errors.New("redis down")
	boom := errors.New("bigquery unavailable")
	_, err = m.Do(context.Background(), "verification-audit", uuid.New(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrStore)
}
