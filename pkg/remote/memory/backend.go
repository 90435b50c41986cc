// Package memory is an in-process remote backend. It behaves like the hosted store,
// including echoing writes back to live subscriptions, and records calls for tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/okestore/storefront-sync/pkg/remote"
)

// Backend implements every remote store interface over maps.
type Backend struct {
	mu sync.Mutex

	profiles      map[string]*models.Profile
	orders        map[string]models.Order
	verifications map[string]models.VerificationRequest
	readings      map[string][]models.SavedReading

	profileSubs map[string][]chan *models.Profile
	orderSubs   map[string][]chan []models.Order
	readingSubs map[string][]chan []models.SavedReading

	saveErr   error
	updateErr error

	ProfileSaves []ProfileSave
	OrderUpdates []OrderUpdate
	Deletes      []string
}

type ProfileSave struct {
	UID     string
	Partial map[string]any
}

type OrderUpdate struct {
	OrderID string
	Partial map[string]any
}

func New() *Backend {
	return &Backend{
		profiles:      map[string]*models.Profile{},
		orders:        map[string]models.Order{},
		verifications: map[string]models.VerificationRequest{},
		readings:      map[string][]models.SavedReading{},
		profileSubs:   map[string][]chan *models.Profile{},
		orderSubs:     map[string][]chan []models.Order{},
		readingSubs:   map[string][]chan []models.SavedReading{},
	}
}

// Remote exposes the backend through the collaborator bundle.
func (b *Backend) Remote() remote.Backend {
	return remote.Backend{
		Profiles:      profileStore{b},
		Orders:        orderStore{b},
		Verifications: verificationStore{b},
		Accounts:      accountLookup{b},
		SavedItems:    savedItemStore{b},
	}
}

// FailSaves makes subsequent profile saves return err; nil restores success.
func (b *Backend) FailSaves(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saveErr = err
}

// FailOrderUpdates makes subsequent order updates return err.
func (b *Backend) FailOrderUpdates(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updateErr = err
}

// PutProfile seeds or replaces a profile and notifies subscribers.
func (b *Backend) PutProfile(profile *models.Profile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profiles[profile.UID] = profile.Clone()
	b.broadcastProfile(profile.UID)
}

// Profile returns a copy of the stored profile.
func (b *Backend) Profile(uid string) *models.Profile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profiles[uid].Clone()
}

// PutOrder seeds an order and notifies subscribers.
func (b *Backend) PutOrder(order models.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders[order.ID] = order
	b.broadcastOrders(order.Customer.Email)
}

// Order returns the stored order.
func (b *Backend) Order(id string) (models.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	return o, ok
}

// PutReadings replaces the saved readings of uid and notifies subscribers.
func (b *Backend) PutReadings(uid string, readings []models.SavedReading) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readings[uid] = append([]models.SavedReading(nil), readings...)
	b.broadcastReadings(uid)
}

// ProfileSaveCount returns how many profile saves were accepted.
func (b *Backend) ProfileSaveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ProfileSaves)
}

// SubscriberCount reports live profile subscriptions for uid.
func (b *Backend) SubscriberCount(uid string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.profileSubs[uid])
}

func (b *Backend) broadcastProfile(uid string) {
	snapshot := b.profiles[uid]
	for _, ch := range b.profileSubs[uid] {
		sendLatest(ch, snapshot.Clone())
	}
}

func (b *Backend) broadcastOrders(email string) {
	key := strings.ToLower(email)
	subs := b.orderSubs[key]
	if len(subs) == 0 {
		return
	}
	snapshot := b.ordersFor(key)
	for _, ch := range subs {
		sendLatest(ch, append([]models.Order(nil), snapshot...))
	}
}

func (b *Backend) broadcastReadings(uid string) {
	for _, ch := range b.readingSubs[uid] {
		sendLatest(ch, append([]models.SavedReading(nil), b.readings[uid]...))
	}
}

func (b *Backend) ordersFor(email string) []models.Order {
	out := []models.Order{}
	for _, o := range b.orders {
		if strings.EqualFold(o.Customer.Email, email) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// sendLatest keeps only the newest snapshot when the reader lags; snapshots are full
// replacements so older ones carry no information.
func sendLatest[T any](ch chan T, value T) {
	for {
		select {
		case ch <- value:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// subscribe registers a stream under key. Like a hosted listener, it ends when ctx is
// cancelled as well as on Close.
func subscribe[T any](ctx context.Context, b *Backend, subs map[string][]chan T, key string, initial T) *remote.Subscription[T] {
	ch := make(chan T, 1)
	ch <- initial
	subs[key] = append(subs[key], ch)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := subs[key]
			for i, c := range list {
				if c == ch {
					subs[key] = append(list[:i], list[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
	closed := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-closed:
		}
	}()
	return remote.NewSubscription[T](ch, func() {
		close(closed)
		stop()
	})
}

type profileStore struct{ b *Backend }

func (s profileStore) Get(_ context.Context, uid string) (*models.Profile, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return s.b.profiles[uid].Clone(), nil
}

func (s profileStore) Save(ctx context.Context, uid string, partial map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if s.b.saveErr != nil {
		return s.b.saveErr
	}
	profile, ok := s.b.profiles[uid]
	if !ok {
		profile = &models.Profile{UID: uid}
		s.b.profiles[uid] = profile
	}
	profile.Apply(partial)
	copied := make(map[string]any, len(partial))
	for k, v := range partial {
		copied[k] = v
	}
	s.b.ProfileSaves = append(s.b.ProfileSaves, ProfileSave{UID: uid, Partial: copied})
	s.b.broadcastProfile(uid)
	return nil
}

func (s profileStore) Subscribe(ctx context.Context, uid string) (*remote.Subscription[*models.Profile], error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return subscribe(ctx, s.b, s.b.profileSubs, uid, s.b.profiles[uid].Clone()), nil
}

type orderStore struct{ b *Backend }

func (s orderStore) Create(_ context.Context, order models.Order) error {
	s.b.PutOrder(order)
	return nil
}

func (s orderStore) Update(_ context.Context, orderID string, partial map[string]any) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if s.b.updateErr != nil {
		return s.b.updateErr
	}
	s.b.OrderUpdates = append(s.b.OrderUpdates, OrderUpdate{OrderID: orderID, Partial: partial})
	order, ok := s.b.orders[orderID]
	if !ok {
		return nil
	}
	applyOrderPartial(&order, partial)
	s.b.orders[orderID] = order
	s.b.broadcastOrders(order.Customer.Email)
	return nil
}

func (s orderStore) Subscribe(ctx context.Context, email string) (*remote.Subscription[[]models.Order], error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	key := strings.ToLower(email)
	return subscribe(ctx, s.b, s.b.orderSubs, key, s.b.ordersFor(key)), nil
}

type verificationStore struct{ b *Backend }

func (s verificationStore) Create(_ context.Context, request models.VerificationRequest) (string, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.verifications[request.ID] = request
	return request.ID, nil
}

func (s verificationStore) Get(_ context.Context, id string) (*models.VerificationRequest, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	req, ok := s.b.verifications[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (s verificationStore) List(_ context.Context) ([]models.VerificationRequest, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	out := make([]models.VerificationRequest, 0, len(s.b.verifications))
	for _, req := range s.b.verifications {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate > out[j].RequestDate })
	return out, nil
}

func (s verificationStore) Delete(_ context.Context, id string) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	delete(s.b.verifications, id)
	s.b.Deletes = append(s.b.Deletes, id)
	return nil
}

type accountLookup struct{ b *Backend }

func (a accountLookup) FindByEmail(_ context.Context, email string) (*models.Profile, error) {
	return a.find(func(p *models.Profile) bool { return email != "" && strings.EqualFold(p.Email, email) }), nil
}

func (a accountLookup) FindByPhone(_ context.Context, phone string) (*models.Profile, error) {
	return a.find(func(p *models.Profile) bool { return phone != "" && p.Phone == phone }), nil
}

func (a accountLookup) find(match func(*models.Profile) bool) *models.Profile {
	a.b.mu.Lock()
	defer a.b.mu.Unlock()
	for _, p := range a.b.profiles {
		if match(p) {
			return p.Clone()
		}
	}
	return nil
}

type savedItemStore struct{ b *Backend }

func (s savedItemStore) Subscribe(ctx context.Context, uid string) (*remote.Subscription[[]models.SavedReading], error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return subscribe(ctx, s.b, s.b.readingSubs, uid, append([]models.SavedReading(nil), s.b.readings[uid]...)), nil
}

func (s savedItemStore) Delete(_ context.Context, uid, id string) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	list := s.b.readings[uid]
	for i, r := range list {
		if r.ID == id {
			s.b.readings[uid] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	s.b.broadcastReadings(uid)
	return nil
}
