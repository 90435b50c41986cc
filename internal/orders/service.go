package orders

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/okestore/storefront-sync/internal/cart"
	"github.com/okestore/storefront-sync/pkg/enums"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
)

// Session is the part of the session manager checkout drives.
type Session interface {
	Cart() []models.CartLine
	ClearCart(ctx context.Context)
	AddOrder(ctx context.Context, order models.Order) error
}

type verificationCreator interface {
	Create(ctx context.Context, req models.VerificationRequest) (models.VerificationRequest, error)
}

// Service places orders from the session cart.
type Service interface {
	PlaceOrder(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}

type service struct {
	session       Session
	verifications verificationCreator
	logg          *logger.Logger
	now           func() time.Time
	validate      *validator.Validate
}

// NewService builds the checkout service.
func NewService(session Session, verifications verificationCreator, logg *logger.Logger, now func() time.Time) (Service, error) {
	if session == nil {
		return nil, fmt.Errorf("session required")
	}
	if verifications == nil {
		return nil, fmt.Errorf("verification service required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if now == nil {
		now = time.Now
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return &service{session: session, verifications: verifications, logg: logg, now: now, validate: v}, nil
}

// PlaceOrder turns the cart into an order. Prepaid orders wait for an operator to verify
// the payment; cash on delivery goes straight to processing.
func (s *service) PlaceOrder(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout")
	}
	lines := s.session.Cart()
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	order := models.Order{
		ID:            newOrderID(),
		Items:         lines,
		Customer:      input.Customer,
		Total:         cart.Total(lines),
		Date:          s.now().UTC().Format(time.RFC3339),
		PaymentMethod: input.PaymentMethod,
		TransactionID: input.TransactionID,
		EvidenceImage: input.EvidenceImage,
	}
	order.Status, order.PaymentStatus = input.PaymentMethod.InitialStatuses()

	if err := s.session.AddOrder(ctx, order); err != nil {
		return nil, err
	}
	s.session.ClearCart(ctx)

	logCtx := s.logg.WithFields(ctx, map[string]any{"order_id": order.ID, "payment_method": order.PaymentMethod})
	s.logg.Info(logCtx, "order placed")

	result := &CheckoutResult{Order: order}
	if !input.PaymentMethod.NeedsVerification() {
		return result, nil
	}

	req, err := s.verifications.Create(ctx, models.VerificationRequest{
		Type:          enums.VerificationTypeProduct,
		OrderID:       order.ID,
		UserEmail:     input.Customer.Email,
		UserPhone:     input.Customer.Phone,
		UserName:      input.Customer.Name,
		Amount:        order.Total.StringFixed(2),
		TransactionID: input.TransactionID,
		EvidenceImage: input.EvidenceImage,
	})
	if err != nil {
		s.logg.Error(logCtx, "payment verification request failed", err)
		return result, err
	}
	result.Verification = &req
	return result, nil
}

func newOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
