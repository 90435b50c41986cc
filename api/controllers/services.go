package controllers

import (
	"context"

	"github.com/okestore/storefront-sync/internal/session"
	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/models"
)

// AuthService is the sign-in surface of the session manager.
type AuthService interface {
	Login(ctx context.Context, email, secret string) (*models.SessionIdentity, error)
	Register(ctx context.Context, email, secret, displayName string) (*models.SessionIdentity, error)
	Logout(ctx context.Context) error
	DeleteCurrentUser(ctx context.Context) error
	Identity() *models.SessionIdentity
}

// SessionService exposes the hosted session's state and mutators.
type SessionService interface {
	Snapshot() session.View
	Identity() *models.SessionIdentity
	AddToCart(ctx context.Context, product models.Product, quantity int, color string, size *string) []models.CartLine
	UpdateQuantity(ctx context.Context, productID, color string, quantity int, size *string) []models.CartLine
	RemoveItem(ctx context.Context, productID, color string, size *string) []models.CartLine
	ClearCart(ctx context.Context)
	ToggleWishlist(ctx context.Context, productID string) []string
	UpdateProfile(ctx context.Context, update session.ProfileUpdate) error
	IncrementChatCount(ctx context.Context) error
	TrackDownload(ctx context.Context) error
	DeleteSavedReading(ctx context.Context, id string) error
}

// VerificationService is the operator workflow over pending claims.
type VerificationService interface {
	Create(ctx context.Context, req models.VerificationRequest) (models.VerificationRequest, error)
	Pending(ctx context.Context) ([]models.VerificationRequest, error)
	Approve(ctx context.Context, id string) (enums.ApprovalOutcome, error)
	Discard(ctx context.Context, id string) (enums.ApprovalOutcome, error)
}
