// Package session owns the signed-in/anonymous lifecycle and the session-scoped state the
// rest of the engine reads and mutates.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okestore/storefront-sync/internal/entitlements"
	"github.com/okestore/storefront-sync/internal/reconcile"
	"github.com/okestore/storefront-sync/pkg/localstore"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/metrics"
	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/okestore/storefront-sync/pkg/remote"
)

// ErrIdentityClosed is returned by Step once the identity feed has ended.
var ErrIdentityClosed = errors.New("identity feed closed")

// IdentityProvider is the authentication collaborator. Subscribe delivers the current
// identity and every later change; nil means signed out.
type IdentityProvider interface {
	Subscribe() (<-chan *models.SessionIdentity, func())
	Login(ctx context.Context, email, secret string) (*models.SessionIdentity, error)
	Register(ctx context.Context, email, secret, displayName string) (*models.SessionIdentity, error)
	Logout(ctx context.Context) error
	Delete(ctx context.Context, accountID string) error
}

// State is everything scoped to the current session.
type State struct {
	Identity      *models.SessionIdentity
	Profile       *models.Profile
	ProfileExists bool
	Collections   reconcile.Collections
	Orders        []models.Order
	SavedReadings []models.SavedReading

	generation uint64
}

type Params struct {
	Identity         IdentityProvider
	Remote           remote.Backend
	Store            localstore.Store
	Logger           *logger.Logger
	Metrics          *metrics.SyncMetrics
	WriteTimeout     time.Duration
	FreeChatMessages int
	Now              func() time.Time
}

type Manager struct {
	mu    sync.Mutex
	state State
	subs  *subscriptions

	// lifetime bounds remote subscriptions. Login may run on a request context that ends
	// long before the session does.
	lifetime context.Context

	identity    IdentityProvider
	identityCh  <-chan *models.SessionIdentity
	unsubscribe func()

	remote  remote.Backend
	store   localstore.Store
	engine  *reconcile.Engine
	calc    *entitlements.Calculator
	logg    *logger.Logger
	metrics *metrics.SyncMetrics
	now     func() time.Time
	timeout time.Duration
}

// NewManager restores the anonymous collections from the Local Store and subscribes to the
// identity feed. Call Run (or Step) to process events. Remote subscriptions opened on
// sign-in live until ctx is done, sign-out, or Close.
func NewManager(ctx context.Context, p Params) (*Manager, error) {
	if p.Identity == nil {
		return nil, errors.New("identity provider is required")
	}
	if p.Store == nil {
		return nil, errors.New("local store is required")
	}
	if p.Remote.Profiles == nil || p.Remote.Orders == nil || p.Remote.SavedItems == nil {
		return nil, errors.New("remote profile, order and saved item stores are required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}

	m := &Manager{
		lifetime: ctx,
		identity: p.Identity,
		remote:   p.Remote,
		store:    p.Store,
		calc:     entitlements.NewCalculator(p.FreeChatMessages, p.Now),
		logg:     p.Logger,
		metrics:  p.Metrics,
		now:      p.Now,
		timeout:  p.WriteTimeout,
	}
	m.engine = reconcile.New(reconcile.Params{
		Store:        p.Store,
		Saver:        profileSaver{m: m},
		Logger:       p.Logger,
		Metrics:      p.Metrics,
		WriteTimeout: p.WriteTimeout,
	})

	m.engine.LoadLocal(ctx, &m.state.Collections)
	m.state.Orders = m.loadAnonymousOrders(ctx)
	m.identityCh, m.unsubscribe = p.Identity.Subscribe()
	return m, nil
}

// Run processes events until ctx is done or the identity feed closes.
func (m *Manager) Run(ctx context.Context) error {
	defer m.Close()
	for {
		if err := m.Step(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrIdentityClosed) {
				return nil
			}
			return err
		}
	}
}

// Step blocks for exactly one event (identity change or snapshot) and applies it.
func (m *Manager) Step(ctx context.Context) error {
	var (
		profileCh <-chan *models.Profile
		ordersCh  <-chan []models.Order
		savedCh   <-chan []models.SavedReading
	)
	m.mu.Lock()
	subs := m.subs
	if subs != nil {
		profileCh, ordersCh, savedCh = subs.channels()
	}
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case id, ok := <-m.identityCh:
		if !ok {
			return ErrIdentityClosed
		}
		m.applyIdentity(ctx, id)
	case p, ok := <-profileCh:
		m.onProfile(ctx, subs, p, ok)
	case orders, ok := <-ordersCh:
		m.onOrders(subs, orders, ok)
	case saved, ok := <-savedCh:
		m.onSaved(subs, saved, ok)
	}
	return nil
}

// Close stops the identity feed and every remote subscription. Safe to call twice.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// profileSaver lets the reconciliation engine write through the manager. It runs with
// m.mu held.
type profileSaver struct {
	m *Manager
}

func (s profileSaver) SaveProfile(ctx context.Context, partial map[string]any) error {
	return s.m.saveProfileLocked(ctx, partial)
}
