package events

import (
	"context"
	"encoding/json"
)

type actorKey struct{}

// WithActor records who is acting so published envelopes carry it.
func WithActor(ctx context.Context, actor ActorRef) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns nil when no actor was recorded.
func ActorFromContext(ctx context.Context) *ActorRef {
	actor, ok := ctx.Value(actorKey{}).(ActorRef)
	if !ok {
		return nil
	}
	return &actor
}

func marshalEnvelope(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}
