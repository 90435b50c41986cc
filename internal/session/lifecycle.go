package session

import (
	"context"

	"github.com/okestore/storefront-sync/pkg/localstore"
	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/okestore/storefront-sync/pkg/remote"
)

const (
	streamProfile = "profile"
	streamOrders  = "orders"
	streamSaved   = "saved_items"
)

// subscriptions is the set opened for one sign-in, tagged with its generation.
type subscriptions struct {
	generation uint64
	profile    *remote.Subscription[*models.Profile]
	orders     *remote.Subscription[[]models.Order]
	saved      *remote.Subscription[[]models.SavedReading]

	// channels that reported closed are not selected again
	profileDone bool
	ordersDone  bool
	savedDone   bool
}

func (s *subscriptions) channels() (<-chan *models.Profile, <-chan []models.Order, <-chan []models.SavedReading) {
	var (
		p <-chan *models.Profile
		o <-chan []models.Order
		v <-chan []models.SavedReading
	)
	if !s.profileDone {
		p = s.profile.C()
	}
	if !s.ordersDone {
		o = s.orders.C()
	}
	if !s.savedDone {
		v = s.saved.C()
	}
	return p, o, v
}

func (s *subscriptions) close() {
	s.profile.Close()
	s.orders.Close()
	s.saved.Close()
}

// applyIdentity moves the session to id. Repeated notifications for the current account
// are ignored.
func (m *Manager) applyIdentity(ctx context.Context, id *models.SessionIdentity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.state.Identity
	switch {
	case id.Authenticated() && current.Authenticated() && current.AccountID == id.AccountID:
		return
	case !id.Authenticated() && !current.Authenticated():
		return
	}

	if current.Authenticated() {
		m.signOutLocked(ctx)
	}
	if id.Authenticated() {
		m.signInLocked(ctx, id)
	}
}

func (m *Manager) signInLocked(ctx context.Context, id *models.SessionIdentity) {
	// at most one live set: close whatever is open before mounting the next
	m.teardownLocked()
	m.state.generation++

	identity := *id
	m.state.Identity = &identity
	m.state.Profile = nil
	m.state.ProfileExists = false
	m.state.Orders = nil
	m.state.SavedReadings = nil
	m.engine.Begin(&m.state.Collections)

	ctx = m.logg.WithAccountID(ctx, id.AccountID)
	streamCtx := m.logg.WithAccountID(m.lifetime, id.AccountID)
	subs := &subscriptions{generation: m.state.generation}

	var err error
	if subs.profile, err = m.remote.Profiles.Subscribe(streamCtx, id.AccountID); err != nil {
		m.logg.Error(ctx, "profile subscription failed", err)
		subs.profileDone = true
	}
	if subs.saved, err = m.remote.SavedItems.Subscribe(streamCtx, id.AccountID); err != nil {
		m.logg.Error(ctx, "saved items subscription failed", err)
		subs.savedDone = true
	}
	if id.Email == "" {
		subs.ordersDone = true
	} else if subs.orders, err = m.remote.Orders.Subscribe(streamCtx, id.Email); err != nil {
		m.logg.Error(ctx, "orders subscription failed", err)
		subs.ordersDone = true
	}
	m.subs = subs
	m.logg.Info(ctx, "session.signed_in")
}

// signOutLocked cancels every subscription first, then clears state, so no late snapshot
// can repopulate it.
func (m *Manager) signOutLocked(ctx context.Context) {
	m.teardownLocked()
	m.state.generation++

	if m.state.Identity != nil {
		ctx = m.logg.WithAccountID(ctx, m.state.Identity.AccountID)
	}
	m.state.Identity = nil
	m.state.Profile = nil
	m.state.ProfileExists = false
	m.state.SavedReadings = nil
	m.engine.End(ctx, &m.state.Collections)
	m.state.Orders = m.loadAnonymousOrders(ctx)
	m.logg.Info(ctx, "session.signed_out")
}

func (m *Manager) teardownLocked() {
	if m.subs == nil {
		return
	}
	m.subs.close()
	m.subs = nil
}

// current reports whether subs still belongs to the live session; otherwise the message
// is stale and counted.
func (m *Manager) currentLocked(subs *subscriptions, stream string) bool {
	if subs == nil || m.subs != subs || subs.generation != m.state.generation {
		m.metrics.SnapshotStale(stream)
		return false
	}
	return true
}

func (m *Manager) onProfile(ctx context.Context, subs *subscriptions, p *models.Profile, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !ok {
		if subs != nil {
			subs.profileDone = true
		}
		return
	}
	if !m.currentLocked(subs, streamProfile) {
		return
	}

	exists := p != nil
	if !exists {
		p = models.DefaultProfile(*m.state.Identity, m.now())
	}
	m.state.Profile = p
	m.state.ProfileExists = exists
	m.engine.ApplyProfile(ctx, &m.state.Collections, p, exists)
	m.metrics.SnapshotApplied(streamProfile)
}

func (m *Manager) onOrders(subs *subscriptions, orders []models.Order, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !ok {
		if subs != nil {
			subs.ordersDone = true
		}
		return
	}
	if !m.currentLocked(subs, streamOrders) {
		return
	}
	m.state.Orders = orders
	m.metrics.SnapshotApplied(streamOrders)
}

func (m *Manager) onSaved(subs *subscriptions, saved []models.SavedReading, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !ok {
		if subs != nil {
			subs.savedDone = true
		}
		return
	}
	if !m.currentLocked(subs, streamSaved) {
		return
	}
	m.state.SavedReadings = saved
	m.metrics.SnapshotApplied(streamSaved)
}

// saveProfileLocked writes partial for the signed-in account. The first write for a
// profile that does not exist remotely materializes the synthesized default as well.
func (m *Manager) saveProfileLocked(ctx context.Context, partial map[string]any) error {
	if !m.state.Identity.Authenticated() {
		return errNotSignedIn
	}
	payload := partial
	if !m.state.ProfileExists && m.state.Profile != nil {
		payload = m.state.Profile.ToFields()
		for k, v := range partial {
			payload[k] = v
		}
	}
	if err := m.remote.Profiles.Save(ctx, m.state.Identity.AccountID, payload); err != nil {
		return err
	}
	next := m.state.Profile.Clone()
	if next == nil {
		next = models.DefaultProfile(*m.state.Identity, m.now())
	}
	next.Apply(partial)
	m.state.Profile = next
	m.state.ProfileExists = true
	return nil
}

func (m *Manager) loadAnonymousOrders(ctx context.Context) []models.Order {
	return localstore.LoadJSON[[]models.Order](ctx, m.store, m.logg, localstore.KeyOrders)
}
