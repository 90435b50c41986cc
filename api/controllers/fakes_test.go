package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okestore/storefront-sync/internal/cart"
	"github.com/okestore/storefront-sync/internal/session"
	"github.com/okestore/storefront-sync/internal/wishlist"
	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

// fakeSession keeps cart and wishlist in memory using the real mutators.
type fakeSession struct {
	identity *models.SessionIdentity
	cart     []models.CartLine
	wishlist []string
	updates  []session.ProfileUpdate
	chats    int
	deleted  []string
	err      error
}

func (f *fakeSession) Snapshot() session.View {
	return session.View{Identity: f.identity, Cart: models.CloneCart(f.cart), Wishlist: append([]string(nil), f.wishlist...)}
}

func (f *fakeSession) Identity() *models.SessionIdentity { return f.identity }

func (f *fakeSession) AddToCart(_ context.Context, product models.Product, quantity int, color string, size *string) []models.CartLine {
	f.cart = cart.AddToCart(f.cart, product, quantity, color, size)
	return models.CloneCart(f.cart)
}

func (f *fakeSession) UpdateQuantity(_ context.Context, productID, color string, quantity int, size *string) []models.CartLine {
	f.cart = cart.UpdateQuantity(f.cart, productID, color, quantity, size)
	return models.CloneCart(f.cart)
}

func (f *fakeSession) RemoveItem(_ context.Context, productID, color string, size *string) []models.CartLine {
	f.cart = cart.RemoveItem(f.cart, productID, color, size)
	return models.CloneCart(f.cart)
}

func (f *fakeSession) ClearCart(context.Context) { f.cart = nil }

func (f *fakeSession) ToggleWishlist(_ context.Context, productID string) []string {
	f.wishlist = wishlist.Toggle(f.wishlist, productID)
	return append([]string(nil), f.wishlist...)
}

func (f *fakeSession) UpdateProfile(_ context.Context, update session.ProfileUpdate) error {
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeSession) IncrementChatCount(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.chats++
	return nil
}

func (f *fakeSession) TrackDownload(context.Context) error { return f.err }

func (f *fakeSession) DeleteSavedReading(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeVerifications struct {
	created  []models.VerificationRequest
	approved []string
	outcome  enums.ApprovalOutcome
	err      error
}

func (f *fakeVerifications) Create(_ context.Context, req models.VerificationRequest) (models.VerificationRequest, error) {
	if f.err != nil {
		return models.VerificationRequest{}, f.err
	}
	req.ID = "v-1"
	f.created = append(f.created, req)
	return req, nil
}

func (f *fakeVerifications) Pending(context.Context) ([]models.VerificationRequest, error) {
	return f.created, f.err
}

func (f *fakeVerifications) Approve(_ context.Context, id string) (enums.ApprovalOutcome, error) {
	if f.err != nil {
		return "", f.err
	}
	f.approved = append(f.approved, id)
	return f.outcome, nil
}

func (f *fakeVerifications) Discard(_ context.Context, id string) (enums.ApprovalOutcome, error) {
	if f.err != nil {
		return "", f.err
	}
	return enums.ApprovalOutcomeDiscarded, nil
}

type publishedEvent struct {
	eventType enums.EventType
	data      any
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, eventType enums.EventType, data any) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{eventType: eventType, data: data})
	return nil
}
