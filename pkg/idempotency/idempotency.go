// Package idempotency remembers which events a consumer has already handled so Pub/Sub
// redeliveries are applied at most once per TTL.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrStore marks failures of the mark store itself, as opposed to the guarded work.
var ErrStore = errors.New("idempotency store")

// MarkStore is the slice of the redis client the manager uses. *redis.Client satisfies it.
type MarkStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Manager keeps one mark per (consumer, event) under
// okestore:idempotency:evt:processed:<consumer>:<event_id>.
type Manager struct {
	store MarkStore
	ttl   time.Duration
	now   func() time.Time
}

// NewManager builds a manager whose marks expire after ttl. Zero keeps them forever.
func NewManager(store MarkStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl, now: time.Now}, nil
}

// CheckAndMarkProcessed places the mark and reports whether one already existed.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key, err := markKey(m.store, consumer, eventID)
	if err != nil {
		return false, err
	}
	// The value records when the mark was taken, which helps when inspecting stuck keys.
	placed, err := m.store.SetNX(ctx, key, m.now().UTC().Format(time.RFC3339), m.ttl)
	if err != nil {
		return false, err
	}
	return !placed, nil
}

// Delete removes the mark so a redelivery is handled again.
func (m *Manager) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := markKey(m.store, consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

// Do runs fn unless the event was already handled, reporting duplicate in that case. When
// fn fails the mark is released so the redelivered event runs again. Store failures wrap
// ErrStore.
func (m *Manager) Do(ctx context.Context, consumer string, eventID uuid.UUID, fn func(context.Context) error) (duplicate bool, err error) {
	seen, err := m.CheckAndMarkProcessed(ctx, consumer, eventID)
	if err != nil {
		return false, fmt.Errorf("%w: mark: %w", ErrStore, err)
	}
	if seen {
		return true, nil
	}
	if err := fn(ctx); err != nil {
		if rerr := m.Delete(ctx, consumer, eventID); rerr != nil {
			return false, errors.Join(err, fmt.Errorf("%w: release: %w", ErrStore, rerr))
		}
		return false, err
	}
	return false, nil
}

func markKey(store MarkStore, consumer string, eventID uuid.UUID) (string, error) {
	switch {
	case consumer == "":
		return "", errors.New("consumer name is required")
	case eventID == uuid.Nil:
		return "", errors.New("event id is required")
	}
	return store.IdempotencyKey("evt:processed:"+consumer, eventID.String()), nil
}
