package notifications

import (
	"context"

	"github.com/okestore/storefront-sync/pkg/localstore"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
)

// Repository persists the notification list and the daily marker.
type Repository interface {
	Load(ctx context.Context) []models.Notification
	Save(ctx context.Context, list []models.Notification) error
	LastDailyDate(ctx context.Context) (string, error)
	SetLastDailyDate(ctx context.Context, day string) error
}

type repositoryImpl struct {
	store localstore.Store
	logg  *logger.Logger
}

// NewRepository returns a notifications repository over the Local Store.
func NewRepository(store localstore.Store, logg *logger.Logger) Repository {
	return &repositoryImpl{store: store, logg: logg}
}

func (r *repositoryImpl) Load(ctx context.Context) []models.Notification {
	return localstore.LoadJSON[[]models.Notification](ctx, r.store, r.logg, localstore.KeyNotifications)
}

func (r *repositoryImpl) Save(ctx context.Context, list []models.Notification) error {
	if list == nil {
		list = []models.Notification{}
	}
	return localstore.SaveJSON(ctx, r.store, localstore.KeyNotifications, list)
}

// LastDailyDate is stored as a bare string, not JSON, matching earlier clients.
func (r *repositoryImpl) LastDailyDate(ctx context.Context) (string, error) {
	value, _, err := r.store.Get(ctx, localstore.KeyDailyNotificationDay)
	return value, err
}

func (r *repositoryImpl) SetLastDailyDate(ctx context.Context, day string) error {
	return r.store.Set(ctx, localstore.KeyDailyNotificationDay, day)
}
