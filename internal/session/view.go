package session

import (
	"github.com/okestore/storefront-sync/internal/entitlements"
	"github.com/okestore/storefront-sync/pkg/models"
)

// View is a detached copy of the session state for readers.
type View struct {
	Identity      *models.SessionIdentity   `json:"identity,omitempty"`
	Profile       *models.Profile           `json:"profile,omitempty"`
	Entitlements  entitlements.Entitlements `json:"entitlements"`
	Cart          []models.CartLine         `json:"cart"`
	Wishlist      []string                  `json:"wishlist"`
	Orders        []models.Order            `json:"orders"`
	SavedReadings []models.SavedReading     `json:"savedReadings"`
	CloudLoaded   bool                      `json:"cloudLoaded"`
}

// Snapshot returns the current state. Entitlements are derived from the profile currently
// held, never from an older one.
func (m *Manager) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		Profile:       m.state.Profile.Clone(),
		Entitlements:  m.calc.For(m.state.Profile),
		Cart:          models.CloneCart(m.state.Collections.Cart),
		Wishlist:      append([]string{}, m.state.Collections.Wishlist...),
		Orders:        append([]models.Order{}, m.state.Orders...),
		SavedReadings: append([]models.SavedReading{}, m.state.SavedReadings...),
		CloudLoaded:   m.state.Collections.CloudLoaded(),
	}
	if v.Cart == nil {
		v.Cart = []models.CartLine{}
	}
	if m.state.Identity != nil {
		id := *m.state.Identity
		v.Identity = &id
	}
	return v
}

// Identity returns the current actor, nil when anonymous.
func (m *Manager) Identity() *models.SessionIdentity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Identity == nil {
		return nil
	}
	id := *m.state.Identity
	return &id
}

// Cart returns a copy of the current cart lines.
func (m *Manager) Cart() []models.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.CloneCart(m.state.Collections.Cart)
}
