package firestore

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/okestore/storefront-sync/pkg/remote"
)

// ProfileStore keeps one document per account in the users collection.
type ProfileStore struct {
	c *Client
}

func (s *ProfileStore) doc(uid string) *firestore.DocumentRef {
	return s.c.fs.Collection(s.c.cols.UsersCollection).Doc(uid)
}

func (s *ProfileStore) Get(ctx context.Context, uid string) (*models.Profile, error) {
	snap, err := s.doc(uid).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", uid, err)
	}
	return decodeProfile(snap)
}

func (s *ProfileStore) Save(ctx context.Context, uid string, partial map[string]any) error {
	if _, err := s.doc(uid).Set(ctx, encodePartial(partial), firestore.MergeAll); err != nil {
		return fmt.Errorf("save profile %s: %w", uid, err)
	}
	return nil
}

func (s *ProfileStore) Subscribe(ctx context.Context, uid string) (*remote.Subscription[*models.Profile], error) {
	it := s.doc(uid).Snapshots(ctx)
	next := func() (*models.Profile, error) {
		snap, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !snap.Exists() {
			return nil, nil
		}
		return decodeProfile(snap)
	}
	return listen(ctx, s.c, "profile", next, it.Stop), nil
}

func decodeProfile(snap *firestore.DocumentSnapshot) (*models.Profile, error) {
	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", snap.Ref.ID, err)
	}
	return doc.toModel(snap.Ref.ID), nil
}

// OrderStore keeps orders in a top level collection keyed by order id.
type OrderStore struct {
	c *Client
}

func (s *OrderStore) col() *firestore.CollectionRef {
	return s.c.fs.Collection(s.c.cols.OrdersCollection)
}

func (s *OrderStore) Create(ctx context.Context, order models.Order) error {
	if _, err := s.col().Doc(order.ID).Set(ctx, orderToDoc(order)); err != nil {
		return fmt.Errorf("create order %s: %w", order.ID, err)
	}
	return nil
}

func (s *OrderStore) Update(ctx context.Context, orderID string, partial map[string]any) error {
	if _, err := s.col().Doc(orderID).Set(ctx, encodePartial(partial), firestore.MergeAll); err != nil {
		return fmt.Errorf("update order %s: %w", orderID, err)
	}
	return nil
}

func (s *OrderStore) Subscribe(ctx context.Context, contactEmail string) (*remote.Subscription[[]models.Order], error) {
	it := s.col().Where("customerDetails.email", "==", contactEmail).Snapshots(ctx)
	next := func() ([]models.Order, error) {
		qs, err := it.Next()
		if err != nil {
			return nil, err
		}
		docs, err := qs.Documents.GetAll()
		if err != nil {
			return nil, err
		}
		orders := make([]models.Order, 0, len(docs))
		for _, snap := range docs {
			var doc orderDoc
			if err := snap.DataTo(&doc); err != nil {
				return nil, fmt.Errorf("decode order %s: %w", snap.Ref.ID, err)
			}
			orders = append(orders, doc.toModel(snap.Ref.ID))
		}
		sort.Slice(orders, func(i, j int) bool { return orders[i].Date > orders[j].Date })
		return orders, nil
	}
	return listen(ctx, s.c, "orders", next, it.Stop), nil
}

// VerificationStore keeps pending requests keyed by request id.
type VerificationStore struct {
	c *Client
}

func (s *VerificationStore) col() *firestore.CollectionRef {
	return s.c.fs.Collection(s.c.cols.VerificationsCollection)
}

func (s *VerificationStore) Create(ctx context.Context, request models.VerificationRequest) (string, error) {
	if _, err := s.col().Doc(request.ID).Set(ctx, verificationToDoc(request)); err != nil {
		return "", fmt.Errorf("create verification %s: %w", request.ID, err)
	}
	return request.ID, nil
}

func (s *VerificationStore) Get(ctx context.Context, id string) (*models.VerificationRequest, error) {
	snap, err := s.col().Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get verification %s: %w", id, err)
	}
	var doc verificationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode verification %s: %w", id, err)
	}
	req := doc.toModel(snap.Ref.ID)
	return &req, nil
}

func (s *VerificationStore) List(ctx context.Context) ([]models.VerificationRequest, error) {
	docs, err := s.col().OrderBy("requestDate", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	out := make([]models.VerificationRequest, 0, len(docs))
	for _, snap := range docs {
		var doc verificationDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode verification %s: %w", snap.Ref.ID, err)
		}
		out = append(out, doc.toModel(snap.Ref.ID))
	}
	return out, nil
}

// Delete is a no-op for missing documents.
func (s *VerificationStore) Delete(ctx context.Context, id string) error {
	if _, err := s.col().Doc(id).Delete(ctx); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete verification %s: %w", id, err)
	}
	return nil
}

// AccountLookup queries the users collection by contact field.
type AccountLookup struct {
	c *Client
}

func (a *AccountLookup) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return a.findBy(ctx, models.FieldEmail, email)
}

func (a *AccountLookup) FindByPhone(ctx context.Context, phone string) (*models.Profile, error) {
	return a.findBy(ctx, models.FieldPhone, phone)
}

func (a *AccountLookup) findBy(ctx context.Context, field, value string) (*models.Profile, error) {
	if value == "" {
		return nil, nil
	}
	docs, err := a.c.fs.Collection(a.c.cols.UsersCollection).
		Where(field, "==", value).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("lookup account by %s: %w", field, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeProfile(docs[0])
}

// SavedItemStore reads users/{uid}/readings.
type SavedItemStore struct {
	c *Client
}

func (s *SavedItemStore) col(uid string) *firestore.CollectionRef {
	return s.c.fs.Collection(s.c.cols.UsersCollection).Doc(uid).Collection(s.c.cols.ReadingsCollection)
}

func (s *SavedItemStore) Subscribe(ctx context.Context, uid string) (*remote.Subscription[[]models.SavedReading], error) {
	it := s.col(uid).OrderBy("createdAt", firestore.Desc).Snapshots(ctx)
	next := func() ([]models.SavedReading, error) {
		qs, err := it.Next()
		if err != nil {
			return nil, err
		}
		docs, err := qs.Documents.GetAll()
		if err != nil {
			return nil, err
		}
		out := make([]models.SavedReading, 0, len(docs))
		for _, snap := range docs {
			var doc readingDoc
			if err := snap.DataTo(&doc); err != nil {
				return nil, fmt.Errorf("decode reading %s: %w", snap.Ref.ID, err)
			}
			out = append(out, models.SavedReading{
				ID:        snap.Ref.ID,
				Title:     doc.Title,
				Content:   doc.Content,
				CreatedAt: doc.CreatedAt,
			})
		}
		return out, nil
	}
	return listen(ctx, s.c, "saved_items", next, it.Stop), nil
}

func (s *SavedItemStore) Delete(ctx context.Context, uid, id string) error {
	if _, err := s.col(uid).Doc(id).Delete(ctx); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete reading %s: %w", id, err)
	}
	return nil
}
