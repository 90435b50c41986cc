package remote

import "sync"

// Subscription is one live snapshot stream. Every value on C is a full replacement of the
// previous one. Close stops delivery and may be called any number of times.
type Subscription[T any] struct {
	ch     <-chan T
	cancel func()
	once   sync.Once
}

// NewSubscription wraps a snapshot channel and the func that stops its producer.
func NewSubscription[T any](ch <-chan T, cancel func()) *Subscription[T] {
	return &Subscription[T]{ch: ch, cancel: cancel}
}

// C returns the snapshot channel. It is closed by the producer once delivery stops.
func (s *Subscription[T]) C() <-chan T {
	if s == nil {
		return nil
	}
	return s.ch
}

// Close is idempotent and nil-safe.
func (s *Subscription[T]) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}
