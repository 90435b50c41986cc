// Package remote describes the hosted document store the session engine syncs against.
package remote

import (
	"context"

	"github.com/okestore/storefront-sync/pkg/models"
)

// ProfileStore reads and writes account profile documents.
type ProfileStore interface {
	// Get returns nil, nil when the profile does not exist.
	Get(ctx context.Context, uid string) (*models.Profile, error)
	// Save merges partial fields into the profile, creating it when missing.
	Save(ctx context.Context, uid string, partial map[string]any) error
	// Subscribe delivers nil while the profile does not exist.
	Subscribe(ctx context.Context, uid string) (*Subscription[*models.Profile], error)
}

// OrderStore owns placed orders.
type OrderStore interface {
	Create(ctx context.Context, order models.Order) error
	Update(ctx context.Context, orderID string, partial map[string]any) error
	Subscribe(ctx context.Context, contactEmail string) (*Subscription[[]models.Order], error)
}

// VerificationStore holds pending verification requests.
type VerificationStore interface {
	Create(ctx context.Context, request models.VerificationRequest) (string, error)
	Get(ctx context.Context, id string) (*models.VerificationRequest, error)
	List(ctx context.Context) ([]models.VerificationRequest, error)
	Delete(ctx context.Context, id string) error
}

// AccountLookup resolves a profile from contact details. Both return nil, nil on no match.
type AccountLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	FindByPhone(ctx context.Context, phone string) (*models.Profile, error)
}

// SavedItemStore streams the saved readings of an account.
type SavedItemStore interface {
	Subscribe(ctx context.Context, uid string) (*Subscription[[]models.SavedReading], error)
	Delete(ctx context.Context, uid, id string) error
}

// Backend bundles every collaborator the session engine needs.
type Backend struct {
	Profiles      ProfileStore
	Orders        OrderStore
	Verifications VerificationStore
	Accounts      AccountLookup
	SavedItems    SavedItemStore
}
