package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okestore/storefront-sync/pkg/localstore"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/okestore/storefront-sync/pkg/pagination"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func newTestService(t *testing.T, store localstore.Store, c *clock) Service {
	t.Helper()
	svc, err := NewService(NewRepository(store, logger.Nop()), Options{Now: c.Now})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCheckDailyFiresOncePerDay(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemory()
	c := &clock{now: time.Date(2026, 3, 7, 9, 0, 0, 0, time.Local)}
	svc := newTestService(t, store, c)

	added, err := svc.CheckDaily(ctx)
	if err != nil || !added {
		t.Fatalf("expected first check to add, got %v %v", added, err)
	}
	c.now = c.now.Add(5 * time.Hour)
	added, err = svc.CheckDaily(ctx)
	if err != nil || added {
		t.Fatalf("expected second check the same day to be a no-op, got %v %v", added, err)
	}

	res, err := svc.List(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected one notification, got %d", len(res.Items))
	}
	first := res.Items[0]
	if want := DefaultTemplates[7%len(DefaultTemplates)].Title; first.Title != want {
		t.Fatalf("expected template %q, got %q", want, first.Title)
	}

	marker, _, _ := store.Get(ctx, localstore.KeyDailyNotificationDay)
	if marker != "Sat Mar 07 2026" {
		t.Fatalf("unexpected marker %q", marker)
	}

	c.now = time.Date(2026, 3, 8, 9, 0, 0, 0, time.Local)
	added, err = svc.CheckDaily(ctx)
	if err != nil || !added {
		t.Fatalf("expected next day to add, got %v %v", added, err)
	}
	res, _ = svc.List(ctx, pagination.Params{})
	if len(res.Items) != 2 {
		t.Fatalf("expected two notifications, got %d", len(res.Items))
	}
	if want := DefaultTemplates[8%len(DefaultTemplates)].Title; res.Items[0].Title != want {
		t.Fatalf("expected rotated template %q first, got %q", want, res.Items[0].Title)
	}
	if res.Items[0].ID == first.ID {
		t.Fatal("daily ids must differ across days")
	}
}

func TestCheckDailyHonoursPersistedMarker(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemory()
	c := &clock{now: time.Date(2026, 3, 7, 9, 0, 0, 0, time.Local)}
	if err := store.Set(ctx, localstore.KeyDailyNotificationDay, "Sat Mar 07 2026"); err != nil {
		t.Fatalf("seed marker: %v", err)
	}

	svc := newTestService(t, store, c)
	added, err := svc.CheckDaily(ctx)
	if err != nil || added {
		t.Fatalf("restart on the same day must not add, got %v %v", added, err)
	}
}

type flakyRepo struct {
	Repository
	markerErr error
	saveErr   error
}

func (r *flakyRepo) SetLastDailyDate(ctx context.Context, day string) error {
	if r.markerErr != nil {
		return r.markerErr
	}
	return r.Repository.SetLastDailyDate(ctx, day)
}

func (r *flakyRepo) Save(ctx context.Context, list []models.Notification) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.Repository.Save(ctx, list)
}

func TestCheckDailyMarkerFailureAddsNothing(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemory()
	repo := &flakyRepo{Repository: NewRepository(store, logger.Nop()), markerErr: errors.New("disk full")}
	c := &clock{now: time.Date(2026, 3, 7, 9, 0, 0, 0, time.Local)}
	svc, err := NewService(repo, Options{Now: c.Now})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	for range 2 {
		if added, err := svc.CheckDaily(ctx); err == nil || added {
			t.Fatalf("expected marker failure, got added=%v err=%v", added, err)
		}
	}
	if got := repo.Load(ctx); len(got) != 0 {
		t.Fatalf("expected no notifications while the marker cannot be written, got %d", len(got))
	}

	repo.markerErr = nil
	if added, err := svc.CheckDaily(ctx); err != nil || !added {
		t.Fatalf("expected add once the marker is writable, got %v %v", added, err)
	}
	if added, _ := svc.CheckDaily(ctx); added {
		t.Fatal("expected no second notification the same day")
	}
	if got := repo.Load(ctx); len(got) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(got))
	}
}

func TestCheckDailySaveFailureRestoresMarker(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemory()
	repo := &flakyRepo{Repository: NewRepository(store, logger.Nop()), saveErr: errors.New("disk full")}
	c := &clock{now: time.Date(2026, 3, 7, 9, 0, 0, 0, time.Local)}
	svc, err := NewService(repo, Options{Now: c.Now})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if added, err := svc.CheckDaily(ctx); err == nil || added {
		t.Fatalf("expected save failure, got added=%v err=%v", added, err)
	}
	if last, _ := repo.LastDailyDate(ctx); last != "" {
		t.Fatalf("expected marker rolled back, got %q", last)
	}

	repo.saveErr = nil
	if added, err := svc.CheckDaily(ctx); err != nil || !added {
		t.Fatalf("expected retry to add, got %v %v", added, err)
	}
}

func TestDailyIDUsesMillis(t *testing.T) {
	now := time.UnixMilli(1767225600123)
	n := dailyFor(DefaultTemplates, now)
	if n.ID != "daily-1767225600123" {
		t.Fatalf("unexpected id %q", n.ID)
	}
	if n.Read {
		t.Fatal("new notifications are unread")
	}
}

func TestMarkAllReadAndClear(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemory()
	c := &clock{now: time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)}
	svc := newTestService(t, store, c)

	for _, id := range []string{"a", "b"} {
		if err := svc.Add(ctx, models.Notification{ID: id, Title: id}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	res, _ := svc.List(ctx, pagination.Params{})
	if res.Unread != 2 || res.Items[0].ID != "b" {
		t.Fatalf("unexpected list %+v", res)
	}

	changed, err := svc.MarkAllRead(ctx)
	if err != nil || changed != 2 {
		t.Fatalf("MarkAllRead = %d, %v", changed, err)
	}
	res, _ = svc.List(ctx, pagination.Params{})
	if res.Unread != 0 {
		t.Fatalf("expected all read, got %d unread", res.Unread)
	}

	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	res, _ = svc.List(ctx, pagination.Params{})
	if len(res.Items) != 0 {
		t.Fatalf("expected empty list after clear, got %d", len(res.Items))
	}
}

func TestListPaginates(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemory()
	base := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	c := &clock{now: base}
	svc := newTestService(t, store, c)

	for i := 0; i < 5; i++ {
		c.now = base.Add(time.Duration(i) * time.Minute)
		if err := svc.Add(ctx, models.Notification{ID: string(rune('a' + i))}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	first, err := svc.List(ctx, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(first.Items) != 2 || first.Cursor == "" {
		t.Fatalf("unexpected first page %+v", first)
	}
	second, err := svc.List(ctx, pagination.Params{Limit: 2, Cursor: first.Cursor})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(second.Items) != 2 || second.Items[0].ID != "c" {
		t.Fatalf("unexpected second page %+v", second.Items)
	}

	if _, err := svc.List(ctx, pagination.Params{Cursor: "!!"}); err == nil {
		t.Fatal("expected invalid cursor error")
	}
}
