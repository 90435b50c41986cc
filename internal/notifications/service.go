package notifications

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/okestore/storefront-sync/pkg/pagination"
)

// Service defines notification list/read operations and the daily generator.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*ListResult, error)
	Add(ctx context.Context, n models.Notification) error
	MarkAllRead(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	CheckDaily(ctx context.Context) (bool, error)
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Unread int                   `json:"unread"`
	Cursor string                `json:"cursor"`
}

type Options struct {
	Templates []Template
	Now       func() time.Time
	Logger    *logger.Logger
}

type service struct {
	mu        sync.Mutex
	repo      Repository
	templates []Template
	now       func() time.Time
	logg      *logger.Logger

	// checkedDay is the in-process guard; the persisted marker covers restarts.
	checkedDay string
}

// NewService wires notifications dependencies.
func NewService(repo Repository, opts Options) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if len(opts.Templates) == 0 {
		opts.Templates = DefaultTemplates
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &service{repo: repo, templates: opts.Templates, now: opts.Now, logg: opts.Logger}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ListResult, error) {
	s.mu.Lock()
	all := s.repo.Load(ctx)
	s.mu.Unlock()

	items, next, err := pagination.Page(all, params, notificationCursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	unread := 0
	for _, n := range all {
		if !n.Read {
			unread++
		}
	}
	if items == nil {
		items = []models.Notification{}
	}
	return &ListResult{Items: items, Unread: unread, Cursor: next}, nil
}

func notificationCursor(n models.Notification) pagination.Cursor {
	at, _ := time.Parse(time.RFC3339, n.Timestamp)
	return pagination.Cursor{CreatedAt: at, ID: n.ID}
}

// Add prepends n, newest first.
func (s *service) Add(ctx context.Context, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.Timestamp == "" {
		n.Timestamp = s.now().UTC().Format(time.RFC3339)
	}
	list := append([]models.Notification{n}, s.repo.Load(ctx)...)
	if err := s.repo.Save(ctx, list); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist notifications")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.repo.Load(ctx)
	changed := 0
	for i := range list {
		if !list[i].Read {
			list[i].Read = true
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	if err := s.repo.Save(ctx, list); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist notifications")
	}
	return changed, nil
}

func (s *service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Save(ctx, nil); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear notifications")
	}
	return nil
}

// CheckDaily adds the day's automated notification unless it was already added today.
// It reports whether a notification was added.
func (s *service) CheckDaily(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := now.Format(DayLayout)
	if s.checkedDay == today {
		return false, nil
	}

	last, err := s.repo.LastDailyDate(ctx)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read daily marker")
	}
	if last == today {
		s.checkedDay = today
		return false, nil
	}

	// Marker before list, so a partial write never yields a second notification for today.
	if err := s.repo.SetLastDailyDate(ctx, today); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write daily marker")
	}
	n := dailyFor(s.templates, now)
	list := append([]models.Notification{n}, s.repo.Load(ctx)...)
	if err := s.repo.Save(ctx, list); err != nil {
		if rerr := s.repo.SetLastDailyDate(ctx, last); rerr != nil {
			s.checkedDay = today
			s.logg.Warn(s.logg.WithField(ctx, "error", rerr.Error()), "daily marker not restored")
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist notifications")
	}
	s.checkedDay = today
	s.logg.Info(s.logg.WithField(ctx, "notification_id", n.ID), "daily notification added")
	return true, nil
}
