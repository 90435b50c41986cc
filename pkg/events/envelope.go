// Package events carries the verification event envelope between the session engine,
// the operator console and the approvals worker.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnvelopeVersion is bumped when the envelope layout changes.
const EnvelopeVersion = 1

// ActorRef identifies who produced the event.
type ActorRef struct {
	AccountID string `json:"accountId,omitempty"`
	Role      string `json:"role,omitempty"`
}

// Envelope is the stable payload structure published on every topic.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// NewEnvelope wraps data with a fresh event id.
func NewEnvelope(data any, actor *ActorRef, now time.Time) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal event data: %w", err)
	}
	return Envelope{
		Version:    EnvelopeVersion,
		EventID:    uuid.NewString(),
		OccurredAt: now.UTC(),
		Actor:      actor,
		Data:       raw,
	}, nil
}

// ParseEnvelope decodes a message body and validates its event id.
func ParseEnvelope(body []byte) (Envelope, uuid.UUID, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, uuid.Nil, fmt.Errorf("decode envelope: %w", err)
	}
	id, err := uuid.Parse(env.EventID)
	if err != nil {
		return Envelope{}, uuid.Nil, fmt.Errorf("invalid event id %q: %w", env.EventID, err)
	}
	return env, id, nil
}
