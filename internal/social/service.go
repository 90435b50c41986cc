// Package social keeps operator-authored social media posts.
package social

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/localstore"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
)

type Service interface {
	Create(ctx context.Context, post models.SocialPost) (models.SocialPost, error)
	Update(ctx context.Context, post models.SocialPost) (models.SocialPost, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) []models.SocialPost
}

type service struct {
	mu       sync.Mutex
	store    localstore.Store
	logg     *logger.Logger
	now      func() time.Time
	validate *validator.Validate
}

func NewService(store localstore.Store, logg *logger.Logger, now func() time.Time) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("local store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &service{store: store, logg: logg, now: now, validate: validator.New()}, nil
}

func (s *service) Create(ctx context.Context, post models.SocialPost) (models.SocialPost, error) {
	if err := s.validate.Struct(post); err != nil {
		return models.SocialPost{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid post")
	}
	post.ID = "sm-" + uuid.NewString()
	post.CreatedAt = s.now().UTC().Format(time.RFC3339)

	s.mu.Lock()
	defer s.mu.Unlock()
	posts := append(s.load(ctx), post)
	return post, s.save(ctx, posts)
}

// Update replaces the post with the same id, keeping its creation time.
func (s *service) Update(ctx context.Context, post models.SocialPost) (models.SocialPost, error) {
	if err := s.validate.Struct(post); err != nil {
		return models.SocialPost{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid post")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	posts := s.load(ctx)
	for i := range posts {
		if posts[i].ID == post.ID {
			post.CreatedAt = posts[i].CreatedAt
			posts[i] = post
			return post, s.save(ctx, posts)
		}
	}
	return models.SocialPost{}, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
}

// Delete is a no-op for unknown ids.
func (s *service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := s.load(ctx)
	kept := posts[:0]
	for _, p := range posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(posts) {
		return nil
	}
	return s.save(ctx, kept)
}

func (s *service) List(ctx context.Context) []models.SocialPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := s.load(ctx)
	if posts == nil {
		return []models.SocialPost{}
	}
	return posts
}

func (s *service) load(ctx context.Context) []models.SocialPost {
	return localstore.LoadJSON[[]models.SocialPost](ctx, s.store, s.logg, localstore.KeySocialPosts)
}

func (s *service) save(ctx context.Context, posts []models.SocialPost) error {
	if err := localstore.SaveJSON(ctx, s.store, localstore.KeySocialPosts, posts); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist social posts")
	}
	return nil
}
