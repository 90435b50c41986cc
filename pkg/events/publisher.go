package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/logger"
)

const (
	defaultPublishTimeout = 10 * time.Second

	AttrEventID   = "event_id"
	AttrEventType = "event_type"
	AttrCreatedAt = "created_at"
)

// Publisher emits a domain event. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, eventType enums.EventType, data any) error
}

// Discard drops every event; used when no topic is configured.
type Discard struct{}

func (Discard) Publish(context.Context, enums.EventType, any) error { return nil }

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type topicPublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

// PubSubPublisher routes each event type to its topic.
type PubSubPublisher struct {
	routes  map[enums.EventType]topicPublisher
	timeout time.Duration
	logg    *logger.Logger
	now     func() time.Time
}

// NewPubSubPublisher builds a publisher from event type to topic handle. Nil handles are
// skipped, so unconfigured topics simply drop their events.
func NewPubSubPublisher(routes map[enums.EventType]*gcppubsub.Publisher, logg *logger.Logger) *PubSubPublisher {
	p := &PubSubPublisher{
		routes:  make(map[enums.EventType]topicPublisher, len(routes)),
		timeout: defaultPublishTimeout,
		logg:    logg,
		now:     time.Now,
	}
	for eventType, pub := range routes {
		if pub == nil {
			continue
		}
		p.routes[eventType] = &gcpPublisher{Publisher: pub}
	}
	return p
}

// Publish wraps data in an envelope and waits for the server ack.
func (p *PubSubPublisher) Publish(ctx context.Context, eventType enums.EventType, data any) error {
	pub, ok := p.routes[eventType]
	if !ok {
		return nil
	}
	env, err := NewEnvelope(data, ActorFromContext(ctx), p.now())
	if err != nil {
		return err
	}
	body, err := marshalEnvelope(env)
	if err != nil {
		return err
	}

	msg := &gcppubsub.Message{
		Data: body,
		Attributes: map[string]string{
			AttrEventID:   env.EventID,
			AttrEventType: string(eventType),
			AttrCreatedAt: env.OccurredAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	result := pub.Publish(publishCtx, msg)
	if result == nil {
		return fmt.Errorf("publisher returned nil for %s", eventType)
	}
	if _, err := result.Get(publishCtx); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	if p.logg != nil {
		p.logg.Debug(p.logg.WithFields(ctx, map[string]any{"event_id": env.EventID, "event_type": eventType}), "event published")
	}
	return nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
