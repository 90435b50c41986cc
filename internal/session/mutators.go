package session

import (
	"context"

	"github.com/okestore/storefront-sync/internal/cart"
	"github.com/okestore/storefront-sync/internal/wishlist"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/localstore"
	"github.com/okestore/storefront-sync/pkg/models"
)

var errNotSignedIn = pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")

// AddToCart merges quantity into the matching line or appends one.
func (m *Manager) AddToCart(ctx context.Context, product models.Product, quantity int, color string, size *string) []models.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := cart.AddToCart(m.state.Collections.Cart, product, quantity, color, size)
	m.engine.SetCart(ctx, &m.state.Collections, next)
	return models.CloneCart(next)
}

// UpdateQuantity sets a line quantity, never below 1.
func (m *Manager) UpdateQuantity(ctx context.Context, productID, color string, quantity int, size *string) []models.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := cart.UpdateQuantity(m.state.Collections.Cart, productID, color, quantity, size)
	m.engine.SetCart(ctx, &m.state.Collections, next)
	return models.CloneCart(next)
}

// RemoveItem removes a line; unknown keys are ignored.
func (m *Manager) RemoveItem(ctx context.Context, productID, color string, size *string) []models.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := cart.RemoveItem(m.state.Collections.Cart, productID, color, size)
	m.engine.SetCart(ctx, &m.state.Collections, next)
	return models.CloneCart(next)
}

// ClearCart empties the cart, used after checkout.
func (m *Manager) ClearCart(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.SetCart(ctx, &m.state.Collections, []models.CartLine{})
}

// ToggleWishlist flips membership of productID.
func (m *Manager) ToggleWishlist(ctx context.Context, productID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := wishlist.Toggle(m.state.Collections.Wishlist, productID)
	m.engine.SetWishlist(ctx, &m.state.Collections, next)
	return append([]string(nil), next...)
}

// ProfileUpdate carries the user-editable profile fields. Nil fields are left alone.
type ProfileUpdate struct {
	Name    *string
	Phone   *string
	Address *string
	City    *string
	Pincode *string
}

// UpdateProfile saves name/phone remotely and keeps the address extras in the
// extended-profile map of the Local Store.
func (m *Manager) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Identity.Authenticated() {
		return errNotSignedIn
	}

	partial := map[string]any{}
	if update.Name != nil {
		partial[models.FieldName] = *update.Name
	}
	if update.Phone != nil {
		partial[models.FieldPhone] = *update.Phone
	}
	if len(partial) > 0 {
		if err := m.saveProfileLocked(ctx, partial); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
		}
	}

	uid := m.state.Identity.AccountID
	extended := localstore.LoadJSON[map[string]models.ExtendedProfile](ctx, m.store, m.logg, localstore.KeyExtendedProfiles)
	if extended == nil {
		extended = map[string]models.ExtendedProfile{}
	}
	entry := extended[uid]
	if update.Phone != nil {
		entry.Phone = *update.Phone
	}
	if update.Address != nil {
		entry.Address = *update.Address
	}
	if update.City != nil {
		entry.City = *update.City
	}
	if update.Pincode != nil {
		entry.Pincode = *update.Pincode
	}
	extended[uid] = entry
	if err := localstore.SaveJSON(ctx, m.store, localstore.KeyExtendedProfiles, extended); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist extended profile")
	}
	return nil
}

// IncrementChatCount records one more chat message against the free allowance.
func (m *Manager) IncrementChatCount(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Identity.Authenticated() || m.state.Profile == nil {
		return errNotSignedIn
	}
	sent := m.state.Profile.ChatMessagesSent + 1
	if err := m.saveProfileLocked(ctx, map[string]any{models.FieldChatMessagesSent: sent}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save chat count")
	}
	return nil
}

// TrackDownload consumes one download from the plan quota.
func (m *Manager) TrackDownload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Identity.Authenticated() || m.state.Profile == nil {
		return errNotSignedIn
	}
	if m.calc.For(m.state.Profile).DownloadsRemaining == 0 {
		return pkgerrors.New(pkgerrors.CodeForbidden, "download quota exhausted")
	}
	used := m.state.Profile.DownloadsUsed + 1
	if err := m.saveProfileLocked(ctx, map[string]any{models.FieldDownloadsUsed: used}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save download count")
	}
	return nil
}

// DeleteSavedReading removes one saved reading remotely and from the current view.
func (m *Manager) DeleteSavedReading(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Identity.Authenticated() {
		return errNotSignedIn
	}
	if err := m.remote.SavedItems.Delete(ctx, m.state.Identity.AccountID, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete saved reading")
	}
	kept := m.state.SavedReadings[:0:0]
	for _, r := range m.state.SavedReadings {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	m.state.SavedReadings = kept
	return nil
}
