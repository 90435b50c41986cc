// Package approvals consumes operator verification decisions from Pub/Sub.
package approvals

import (
	"context"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/events"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/metrics"
)

const consumerName = "verification-approvals"

// Decider applies a decision to a pending verification request.
type Decider interface {
	Approve(ctx context.Context, id string) (enums.ApprovalOutcome, error)
	Discard(ctx context.Context, id string) (enums.ApprovalOutcome, error)
}

type deduper interface {
	Do(ctx context.Context, consumer string, eventID uuid.UUID, fn func(context.Context) error) (bool, error)
}

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *gcppubsub.Message)) error
}

// Service applies approved and discarded events at most once per event id.
type Service struct {
	subscription receiver
	decider      Decider
	decoders     *events.DecoderRegistry
	manager      deduper
	logg         *logger.Logger
	metrics      *metrics.JobMetrics
}

// NewService creates the approvals consumer.
func NewService(subscription *gcppubsub.Subscriber, decider Decider, manager deduper, logg *logger.Logger) (*Service, error) {
	if subscription == nil {
		return nil, errors.New("approvals subscription is required")
	}
	if decider == nil {
		return nil, errors.New("verification service is required")
	}
	if manager == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		subscription: subscription,
		decider:      decider,
		decoders:     events.NewVerificationDecoders(),
		manager:      manager,
		logg:         logg,
	}, nil
}

// WithMetrics records per-decision duration and outcome counters.
func (s *Service) WithMetrics(m *metrics.JobMetrics) *Service {
	s.metrics = m
	return s
}

type processResult struct {
	nack bool
}

// Run consumes decisions until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	decoded, err := s.decoders.DecodeMessage(msg.Attributes, msg.Data)
	logCtx := s.logg.WithFields(ctx, messageFields(msg.ID, decoded))
	if err != nil {
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "dropping undecodable approval message")
		return processResult{}
	}
	decision := decoded.Payload.(events.VerificationDecision)
	logCtx = s.logg.WithField(logCtx, "verification_id", decision.RequestID)
	if actor := decoded.Envelope.Actor; actor != nil {
		logCtx = s.logg.WithActorRole(logCtx, actor.Role)
		logCtx = events.WithActor(logCtx, *actor)
	}

	var (
		outcome enums.ApprovalOutcome
		ran     bool
	)
	duplicate, err := s.manager.Do(logCtx, consumerName, decoded.EventID, func(ctx context.Context) error {
		ran = true
		done := s.metrics.Track(string(decoded.Type))
		var applyErr error
		outcome, applyErr = s.apply(ctx, decoded.Type, decision.RequestID)
		done(applyErr)
		return applyErr
	})
	switch {
	case err != nil && !ran:
		s.logg.Error(logCtx, "idempotency store unavailable", err)
		return processResult{nack: true}
	case err != nil:
		s.logg.Error(logCtx, "decision failed", err)
		return processResult{nack: true}
	case duplicate:
		s.logg.Info(logCtx, "event already processed")
		return processResult{}
	}

	s.logg.Info(s.logg.WithField(logCtx, "outcome", outcome), "verification decision applied")
	return processResult{}
}

func messageFields(messageID string, d events.Decoded) map[string]any {
	fields := map[string]any{"message_id": messageID}
	if d.Type != "" {
		fields["event_type"] = d.Type
	}
	if d.EventID != uuid.Nil {
		fields["event_id"] = d.EventID.String()
		fields["occurred_at"] = d.Envelope.OccurredAt.Format(time.RFC3339Nano)
	}
	return fields
}

func (s *Service) apply(ctx context.Context, eventType enums.EventType, requestID string) (enums.ApprovalOutcome, error) {
	if eventType == enums.EventVerificationDiscarded {
		return s.decider.Discard(ctx, requestID)
	}
	return s.decider.Approve(ctx, requestID)
}
