package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/okestore/storefront-sync/pkg/enums"
)

type decodeFunc func(payload json.RawMessage) (any, error)

type payloadKey struct {
	eventType enums.EventType
	version   int
}

// DecoderRegistry maps (event type, envelope version) to a payload decoder. A consumer
// builds one registry holding only the events it handles.
type DecoderRegistry struct {
	mu       sync.RWMutex
	decoders map[payloadKey]decodeFunc
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make(map[payloadKey]decodeFunc)}
}

// RegisterPayload decodes eventType@version into T and runs check on the result.
func RegisterPayload[T any](r *DecoderRegistry, eventType enums.EventType, version int, check func(T) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[payloadKey{eventType, version}] = func(payload json.RawMessage) (any, error) {
		var out T
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, err
		}
		if check != nil {
			if err := check(out); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}

// NewVerificationDecoders handles the operator decisions the approvals worker applies.
func NewVerificationDecoders() *DecoderRegistry {
	reg := NewDecoderRegistry()
	check := func(d VerificationDecision) error { return requireRequestID(d.RequestID) }
	RegisterPayload(reg, enums.EventVerificationApproved, EnvelopeVersion, check)
	RegisterPayload(reg, enums.EventVerificationDiscarded, EnvelopeVersion, check)
	return reg
}

// NewAuditDecoders handles the unresolved-approval records the audit sink stores.
func NewAuditDecoders() *DecoderRegistry {
	reg := NewDecoderRegistry()
	RegisterPayload(reg, enums.EventVerificationUnresolved, EnvelopeVersion, func(u VerificationUnresolved) error {
		return requireRequestID(u.RequestID)
	})
	return reg
}

func requireRequestID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("requestId is required")
	}
	return nil
}

// Decode runs the decoder registered for eventType@version.
func (r *DecoderRegistry) Decode(eventType enums.EventType, version int, payload json.RawMessage) (any, error) {
	r.mu.RLock()
	decode, ok := r.decoders[payloadKey{eventType, version}]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no decoder for %s@v%d", eventType, version)
	}
	return decode(payload)
}

// Decoded is one Pub/Sub message after attribute, envelope and payload checks.
type Decoded struct {
	Type     enums.EventType
	EventID  uuid.UUID
	Envelope Envelope
	Payload  any
}

// DecodeMessage validates a raw message. Its errors are permanent: the same bytes will
// never decode on redelivery, so callers ack them.
func (r *DecoderRegistry) DecodeMessage(attrs map[string]string, data []byte) (Decoded, error) {
	eventType, err := enums.ParseEventType(strings.TrimSpace(attrs[AttrEventType]))
	if err != nil {
		return Decoded{}, fmt.Errorf("event type: %w", err)
	}
	env, eventID, err := ParseEnvelope(data)
	if err != nil {
		return Decoded{Type: eventType}, err
	}
	payload, err := r.Decode(eventType, env.Version, env.Data)
	if err != nil {
		return Decoded{Type: eventType, EventID: eventID, Envelope: env}, fmt.Errorf("payload: %w", err)
	}
	return Decoded{Type: eventType, EventID: eventID, Envelope: env, Payload: payload}, nil
}
