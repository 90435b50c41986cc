package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/okestore/storefront-sync/pkg/enums"
)

type stubResult struct {
	err error
}

func (r stubResult) Get(context.Context) (string, error) {
	return "server-id", r.err
}

type stubTopic struct {
	msgs []*gcppubsub.Message
	err  error
}

func (s *stubTopic) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	s.msgs = append(s.msgs, msg)
	return stubResult{err: s.err}
}

func newTestPublisher(topic *stubTopic) *PubSubPublisher {
	return &PubSubPublisher{
		routes:  map[enums.EventType]topicPublisher{enums.EventVerificationUnresolved: topic},
		timeout: time.Second,
		now:     func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	}
}

func TestPublishWrapsEnvelopeAndAttributes(t *testing.T) {
	topic := &stubTopic{}
	pub := newTestPublisher(topic)
	ctx := WithActor(context.Background(), ActorRef{AccountID: "op-1", Role: "admin"})

	payload := VerificationUnresolved{RequestID: "vr-1", Type: enums.VerificationTypeSubscription, UserEmail: "x@example.com"}
	if err := pub.Publish(ctx, enums.EventVerificationUnresolved, payload); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(topic.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(topic.msgs))
	}
	msg := topic.msgs[0]
	if msg.Attributes[AttrEventType] != "verification.unresolved" {
		t.Fatalf("unexpected event type attr %q", msg.Attributes[AttrEventType])
	}

	env, id, err := ParseEnvelope(msg.Data)
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	if id.String() != msg.Attributes[AttrEventID] {
		t.Fatalf("event id attr %q does not match envelope %q", msg.Attributes[AttrEventID], id)
	}
	if env.Actor == nil || env.Actor.AccountID != "op-1" {
		t.Fatalf("expected actor to be carried, got %+v", env.Actor)
	}
	var decoded VerificationUnresolved
	if err := json.Unmarshal(env.Data, &decoded); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if decoded.RequestID != "vr-1" {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}

func TestPublishUnroutedEventIsDropped(t *testing.T) {
	topic := &stubTopic{}
	pub := newTestPublisher(topic)
	if err := pub.Publish(context.Background(), enums.EventVerificationRequested, VerificationRequested{}); err != nil {
		t.Fatalf("expected nil error for unrouted event, got %v", err)
	}
	if len(topic.msgs) != 0 {
		t.Fatalf("expected no messages, got %d", len(topic.msgs))
	}
}

func TestPublishSurfacesServerError(t *testing.T) {
	topic := &stubTopic{err: errors.New("unavailable")}
	pub := newTestPublisher(topic)
	if err := pub.Publish(context.Background(), enums.EventVerificationUnresolved, VerificationUnresolved{}); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestParseEnvelopeRejectsBadIDs(t *testing.T) {
	if _, _, err := ParseEnvelope([]byte(`{"eventId":"nope","data":{}}`)); err == nil {
		t.Fatal("expected invalid id error")
	}
	if _, _, err := ParseEnvelope([]byte(`not json`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestVerificationDecoders(t *testing.T) {
	reg := NewVerificationDecoders()

	out, err := reg.Decode(enums.EventVerificationApproved, EnvelopeVersion, json.RawMessage(`{"requestId":"vr-9"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision, ok := out.(VerificationDecision); !ok || decision.RequestID != "vr-9" {
		t.Fatalf("unexpected output %+v", out)
	}

	if _, err := reg.Decode(enums.EventVerificationDiscarded, EnvelopeVersion, json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected missing request id to fail")
	}
	if _, err := reg.Decode(enums.EventVerificationRequested, EnvelopeVersion, json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected unregistered decoder error")
	}
}

func TestDecodeMessage(t *testing.T) {
	reg := NewAuditDecoders()
	env, err := NewEnvelope(VerificationUnresolved{RequestID: "vr-3", Type: enums.VerificationTypeSubscription}, nil, time.Now())
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	body, _ := json.Marshal(env)
	attrs := map[string]string{AttrEventType: string(enums.EventVerificationUnresolved)}

	got, err := reg.DecodeMessage(attrs, body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != enums.EventVerificationUnresolved || got.EventID.String() != env.EventID {
		t.Fatalf("unexpected header %+v", got)
	}
	if rec, ok := got.Payload.(VerificationUnresolved); !ok || rec.RequestID != "vr-3" {
		t.Fatalf("unexpected payload %+v", got.Payload)
	}

	if _, err := reg.DecodeMessage(map[string]string{}, body); err == nil {
		t.Fatal("missing event type must fail")
	}
	if _, err := reg.DecodeMessage(attrs, []byte("{")); err == nil {
		t.Fatal("bad envelope must fail")
	}
	approved := map[string]string{AttrEventType: string(enums.EventVerificationApproved)}
	if got, err := reg.DecodeMessage(approved, body); err == nil || got.EventID.String() != env.EventID {
		t.Fatalf("unhandled type should fail after the envelope parsed, got %+v %v", got, err)
	}
}
