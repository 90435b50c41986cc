// Package support keeps the help-ticket list.
package support

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/okestore/storefront-sync/pkg/enums"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/localstore"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
)

// Service manages support tickets.
type Service interface {
	Create(ctx context.Context, ticket models.SupportTicket) (models.SupportTicket, error)
	SetStatus(ctx context.Context, id string, status enums.TicketStatus) (models.SupportTicket, error)
	List(ctx context.Context) []models.SupportTicket
}

type service struct {
	mu       sync.Mutex
	store    localstore.Store
	logg     *logger.Logger
	now      func() time.Time
	validate *validator.Validate
}

func NewService(store localstore.Store, logg *logger.Logger, now func() time.Time) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("local store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &service{store: store, logg: logg, now: now, validate: validator.New()}, nil
}

// Create opens a ticket. Client-supplied id, status and timestamp are replaced.
func (s *service) Create(ctx context.Context, ticket models.SupportTicket) (models.SupportTicket, error) {
	if err := s.validate.Struct(ticket); err != nil {
		return models.SupportTicket{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid support ticket")
	}
	ticket.ID = "st-" + uuid.NewString()
	ticket.Status = enums.TicketStatusOpen
	ticket.CreatedAt = s.now().UTC().Format(time.RFC3339)

	s.mu.Lock()
	defer s.mu.Unlock()
	tickets := append(s.load(ctx), ticket)
	if err := s.save(ctx, tickets); err != nil {
		return models.SupportTicket{}, err
	}
	s.logg.Info(s.logg.WithField(ctx, "ticket_id", ticket.ID), "support ticket opened")
	return ticket, nil
}

// SetStatus moves a ticket between Open and Closed; no other field changes.
func (s *service) SetStatus(ctx context.Context, id string, status enums.TicketStatus) (models.SupportTicket, error) {
	if !status.IsValid() {
		return models.SupportTicket{}, pkgerrors.New(pkgerrors.CodeValidation, "status must be Open or Closed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tickets := s.load(ctx)
	for i := range tickets {
		if tickets[i].ID != id {
			continue
		}
		tickets[i].Status = status
		if err := s.save(ctx, tickets); err != nil {
			return models.SupportTicket{}, err
		}
		return tickets[i], nil
	}
	return models.SupportTicket{}, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
}

func (s *service) List(ctx context.Context) []models.SupportTicket {
	s.mu.Lock()
	defer s.mu.Unlock()
	tickets := s.load(ctx)
	if tickets == nil {
		return []models.SupportTicket{}
	}
	return tickets
}

func (s *service) load(ctx context.Context) []models.SupportTicket {
	return localstore.LoadJSON[[]models.SupportTicket](ctx, s.store, s.logg, localstore.KeySupportTickets)
}

func (s *service) save(ctx context.Context, tickets []models.SupportTicket) error {
	if err := localstore.SaveJSON(ctx, s.store, localstore.KeySupportTickets, tickets); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist support tickets")
	}
	return nil
}
