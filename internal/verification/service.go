// Package verification turns operator-approved claims into order and profile updates.
package verification

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/okestore/storefront-sync/pkg/enums"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/events"
	"github.com/okestore/storefront-sync/pkg/localstore"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/metrics"
	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/okestore/storefront-sync/pkg/remote"
)

// OrderBook is the session-side view of orders. The approvals worker runs without one.
type OrderBook interface {
	FindOrder(orderID string) (models.Order, bool)
	UpdateOrderStatus(ctx context.Context, orderID string, status enums.OrderStatus, payment enums.PaymentStatus) bool
}

type Params struct {
	Remote    remote.Backend
	Store     localstore.Store
	Orders    OrderBook
	Publisher events.Publisher
	Logger    *logger.Logger
	Metrics   *metrics.SyncMetrics
	Now       func() time.Time
}

type Service struct {
	mu sync.Mutex

	verifications remote.VerificationStore
	orders        remote.OrderStore
	profiles      remote.ProfileStore
	accounts      remote.AccountLookup
	store         localstore.Store
	book          OrderBook
	publisher     events.Publisher
	logg          *logger.Logger
	metrics       *metrics.SyncMetrics
	now           func() time.Time
	validate      *validator.Validate
}

func NewService(p Params) (*Service, error) {
	if p.Remote.Verifications == nil || p.Remote.Orders == nil || p.Remote.Profiles == nil || p.Remote.Accounts == nil {
		return nil, errors.New("verification, order, profile and account stores are required")
	}
	if p.Store == nil {
		p.Store = localstore.NewMemory()
	}
	if p.Publisher == nil {
		p.Publisher = events.Discard{}
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Service{
		verifications: p.Remote.Verifications,
		orders:        p.Remote.Orders,
		profiles:      p.Remote.Profiles,
		accounts:      p.Remote.Accounts,
		store:         p.Store,
		book:          p.Orders,
		publisher:     p.Publisher,
		logg:          p.Logger,
		metrics:       p.Metrics,
		now:           p.Now,
		validate:      newValidator(),
	}, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Create validates a claim and queues it for an operator.
func (s *Service) Create(ctx context.Context, req models.VerificationRequest) (models.VerificationRequest, error) {
	if err := s.check(req); err != nil {
		return models.VerificationRequest{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req.ID = "vr-" + uuid.NewString()
	req.RequestDate = s.now().UTC().Format(time.RFC3339)
	if _, err := s.verifications.Create(ctx, req); err != nil {
		return models.VerificationRequest{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store verification request")
	}

	pending := s.loadPending(ctx)
	pending = append(pending, req)
	if err := localstore.SaveJSON(ctx, s.store, localstore.KeyPendingVerifications, pending); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to persist pending verification")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"verification_id": req.ID, "type": req.Type})
	if err := s.publisher.Publish(ctx, enums.EventVerificationRequested, events.VerificationRequested{Request: req}); err != nil {
		s.logg.Error(logCtx, "failed to announce verification request", err)
	}
	s.logg.Info(logCtx, "verification.requested")
	return req, nil
}

func (s *Service) check(req models.VerificationRequest) error {
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			details := map[string]string{}
			for _, fe := range fieldErrs {
				details[fe.Field()] = fmt.Sprintf("failed %s", fe.Tag())
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid verification request").WithDetails(details)
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid verification request")
	}

	hasContact := strings.TrimSpace(req.UserEmail) != "" || strings.TrimSpace(req.UserPhone) != ""
	switch req.Type {
	case enums.VerificationTypeProduct:
		if req.OrderID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "orderId is required for product verification")
		}
		if s.book == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "order lookup unavailable")
		}
		order, ok := s.book.FindOrder(req.OrderID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if !order.PaymentStatus.AwaitingApproval() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment verification")
		}
	case enums.VerificationTypeSubscription:
		if strings.TrimSpace(req.PlanName) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "planName is required for subscription verification")
		}
		if !hasContact {
			return pkgerrors.New(pkgerrors.CodeValidation, "userEmail or userPhone is required")
		}
	case enums.VerificationTypeSupportChat:
		if !hasContact {
			return pkgerrors.New(pkgerrors.CodeValidation, "userEmail or userPhone is required")
		}
	}
	return nil
}

// Pending lists requests still awaiting an operator, newest first.
func (s *Service) Pending(ctx context.Context) ([]models.VerificationRequest, error) {
	list, err := s.verifications.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list verification requests")
	}
	if list == nil {
		list = []models.VerificationRequest{}
	}
	return list, nil
}

// Approve applies the side effects of request id, then consumes it. Approving an id that
// is already gone is a no-op. If a side-effect write fails the request stays pending so
// the operator can approve again. Order state is checked only at Create; a worker has no
// order book to check against.
func (s *Service) Approve(ctx context.Context, id string) (enums.ApprovalOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.lookup(ctx, id)
	if err != nil {
		return "", err
	}
	if req == nil {
		s.metrics.Approval("unknown", enums.ApprovalOutcomeMissing.String())
		return enums.ApprovalOutcomeMissing, nil
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"verification_id": id, "type": req.Type})
	now := s.now()

	outcome := enums.ApprovalOutcomeApplied
	switch req.Type {
	case enums.VerificationTypeProduct:
		err = s.applyProduct(ctx, req)
	case enums.VerificationTypeSubscription:
		terms := TermsFor(req.PlanName)
		outcome, err = s.applyToAccount(ctx, logCtx, req, map[string]any{
			models.FieldIsPremium:          true,
			models.FieldSubscriptionPlan:   req.PlanName,
			models.FieldSubscriptionExpiry: now.Add(terms.Duration).UTC().Format(time.RFC3339),
			models.FieldDownloadsLimit:     terms.DownloadsLimit,
		})
	case enums.VerificationTypeSupportChat:
		outcome, err = s.applyToAccount(ctx, logCtx, req, map[string]any{
			models.FieldWhatsappSupportExpiry: now.Add(supportChatDuration).UTC().Format(time.RFC3339),
		})
	default:
		s.logg.Warn(logCtx, "unknown verification type, consuming without effect")
	}
	if err != nil {
		s.logg.Error(logCtx, "verification side effect failed", err)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply verification")
	}

	if err := s.remove(ctx, id); err != nil {
		return "", err
	}
	s.metrics.Approval(req.Type.String(), outcome.String())
	s.logg.Info(s.logg.WithField(logCtx, "outcome", outcome), "verification.approved")
	return outcome, nil
}

// Discard consumes request id without side effects.
func (s *Service) Discard(ctx context.Context, id string) (enums.ApprovalOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.lookup(ctx, id)
	if err != nil {
		return "", err
	}
	if req == nil {
		return enums.ApprovalOutcomeMissing, nil
	}
	if err := s.remove(ctx, id); err != nil {
		return "", err
	}
	s.metrics.Approval(req.Type.String(), enums.ApprovalOutcomeDiscarded.String())
	s.logg.Info(s.logg.WithField(ctx, "verification_id", id), "verification.discarded")
	return enums.ApprovalOutcomeDiscarded, nil
}

func (s *Service) applyProduct(ctx context.Context, req *models.VerificationRequest) error {
	if req.OrderID == "" {
		return nil
	}
	if s.book != nil {
		s.book.UpdateOrderStatus(ctx, req.OrderID, enums.OrderStatusProcessing, enums.PaymentStatusCompleted)
	}
	return s.orders.Update(ctx, req.OrderID, map[string]any{
		models.OrderFieldStatus:        enums.OrderStatusProcessing,
		models.OrderFieldPaymentStatus: enums.PaymentStatusCompleted,
	})
}

// applyToAccount resolves the claimant by email, then phone, and writes partial to their
// profile. An unresolved claimant is audited and the request is still consumed.
func (s *Service) applyToAccount(ctx, logCtx context.Context, req *models.VerificationRequest, partial map[string]any) (enums.ApprovalOutcome, error) {
	uid, err := s.resolve(ctx, req)
	if err != nil {
		return "", err
	}
	if uid == "" {
		s.audit(ctx, logCtx, req)
		return enums.ApprovalOutcomeUnresolved, nil
	}
	if err := s.profiles.Save(ctx, uid, partial); err != nil {
		return "", err
	}
	return enums.ApprovalOutcomeApplied, nil
}

func (s *Service) resolve(ctx context.Context, req *models.VerificationRequest) (string, error) {
	if email := strings.TrimSpace(req.UserEmail); email != "" {
		p, err := s.accounts.FindByEmail(ctx, email)
		if err != nil {
			return "", err
		}
		if p != nil {
			return p.UID, nil
		}
	}
	if phone := strings.TrimSpace(req.UserPhone); phone != "" {
		p, err := s.accounts.FindByPhone(ctx, phone)
		if err != nil {
			return "", err
		}
		if p != nil {
			return p.UID, nil
		}
	}
	return "", nil
}

func (s *Service) audit(ctx, logCtx context.Context, req *models.VerificationRequest) {
	s.logg.Warn(s.logg.WithFields(logCtx, map[string]any{
		"user_email": req.UserEmail,
		"user_phone": req.UserPhone,
		"plan":       req.PlanName,
	}), "verification approved but no account matched")
	record := events.VerificationUnresolved{
		RequestID: req.ID,
		Type:      req.Type,
		UserEmail: req.UserEmail,
		UserPhone: req.UserPhone,
		PlanName:  req.PlanName,
	}
	if err := s.publisher.Publish(ctx, enums.EventVerificationUnresolved, record); err != nil {
		s.logg.Error(logCtx, "failed to publish audit record", err)
	}
}

// lookup prefers the remote document and falls back to the local pending list.
func (s *Service) lookup(ctx context.Context, id string) (*models.VerificationRequest, error) {
	req, err := s.verifications.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification request")
	}
	if req != nil {
		return req, nil
	}
	for _, local := range s.loadPending(ctx) {
		if local.ID == id {
			found := local
			return &found, nil
		}
	}
	return nil, nil
}

// remove makes consumption durable. It runs only after side effects were issued.
func (s *Service) remove(ctx context.Context, id string) error {
	pending := s.loadPending(ctx)
	kept := pending[:0]
	for _, r := range pending {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if err := localstore.SaveJSON(ctx, s.store, localstore.KeyPendingVerifications, kept); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "verification_id", id), "failed to update local pending list")
	}
	if err := s.verifications.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete verification request")
	}
	return nil
}

func (s *Service) loadPending(ctx context.Context) []models.VerificationRequest {
	return localstore.LoadJSON[[]models.VerificationRequest](ctx, s.store, s.logg, localstore.KeyPendingVerifications)
}
