// Package audit drains unresolved-approval records from Pub/Sub into BigQuery.
package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/okestore/storefront-sync/pkg/events"
	"github.com/okestore/storefront-sync/pkg/logger"
)

const consumerName = "verification-audit"

// RowWriter persists audit rows.
type RowWriter interface {
	Insert(ctx context.Context, row Row) error
	Discard()
}

type deduper interface {
	Do(ctx context.Context, consumer string, eventID uuid.UUID, fn func(context.Context) error) (bool, error)
}

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *gcppubsub.Message)) error
}

// Service writes one audit row per unresolved approval event.
type Service struct {
	subscription receiver
	writer       RowWriter
	decoders     *events.DecoderRegistry
	manager      deduper
	logg         *logger.Logger

	// writeMu serializes access to the writer buffer across receive callbacks.
	writeMu sync.Mutex
}

// NewService creates the audit consumer.
func NewService(subscription *gcppubsub.Subscriber, writer RowWriter, manager deduper, logg *logger.Logger) (*Service, error) {
	if subscription == nil {
		return nil, errors.New("audit subscription is required")
	}
	if writer == nil {
		return nil, errors.New("audit writer is required")
	}
	if manager == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		subscription: subscription,
		writer:       writer,
		decoders:     events.NewAuditDecoders(),
		manager:      manager,
		logg:         logg,
	}, nil
}

// Run consumes audit records until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg) {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// process reports whether the message should be redelivered.
func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) bool {
	decoded, err := s.decoders.DecodeMessage(msg.Attributes, msg.Data)
	fields := map[string]any{"message_id": msg.ID, "event_type": decoded.Type}
	if decoded.EventID != uuid.Nil {
		fields["event_id"] = decoded.EventID.String()
	}
	if err != nil {
		fields["error"] = err.Error()
		s.logg.Warn(s.logg.WithFields(ctx, fields), "event not handled by audit consumer")
		return false
	}
	record := decoded.Payload.(events.VerificationUnresolved)
	fields["verification_id"] = record.RequestID
	logCtx := s.logg.WithFields(ctx, fields)

	duplicate, err := s.manager.Do(logCtx, consumerName, decoded.EventID, func(ctx context.Context) error {
		return s.write(ctx, decoded.EventID, decoded.Envelope, record)
	})
	if err != nil {
		s.logg.Error(logCtx, "audit row not written", err)
		return true
	}
	if duplicate {
		s.logg.Info(logCtx, "event already processed")
		return false
	}
	s.logg.Info(logCtx, "unresolved approval recorded")
	return false
}

func (s *Service) write(ctx context.Context, eventID uuid.UUID, env events.Envelope, record events.VerificationUnresolved) error {
	row, err := buildRow(eventID, env, record)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.writer.Insert(ctx, row); err != nil {
		s.writer.Discard()
		return err
	}
	return nil
}

func buildRow(eventID uuid.UUID, env events.Envelope, record events.VerificationUnresolved) (Row, error) {
	payload, err := EncodeJSON(env.Data)
	if err != nil {
		return Row{}, err
	}
	occurred := env.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	row := Row{
		EventID:          eventID.String(),
		OccurredAt:       occurred,
		RequestID:        record.RequestID,
		VerificationType: string(record.Type),
		UserEmail:        optional(record.UserEmail),
		UserPhone:        optional(record.UserPhone),
		PlanName:         optional(record.PlanName),
		Payload:          payload,
	}
	if env.Actor != nil {
		row.ActorID = optional(env.Actor.AccountID)
	}
	return row, nil
}
