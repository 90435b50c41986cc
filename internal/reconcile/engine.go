// Package reconcile keeps the local and remote copies of cart and wishlist convergent.
package reconcile

import (
	"context"
	"time"

	"github.com/okestore/storefront-sync/internal/cart"
	"github.com/okestore/storefront-sync/internal/wishlist"
	"github.com/okestore/storefront-sync/pkg/localstore"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/metrics"
	"github.com/okestore/storefront-sync/pkg/models"
)

const (
	collectionCart     = "cart"
	collectionWishlist = "wishlist"
)

// Saver writes a partial profile for the signed-in account.
type Saver interface {
	SaveProfile(ctx context.Context, partial map[string]any) error
}

// Collections is the cart/wishlist part of session state. The caller serializes access.
type Collections struct {
	Cart     []models.CartLine
	Wishlist []string

	authenticated bool
	cloudLoaded   bool
	remoteCart    string
	remoteWish    string
}

// CloudLoaded reports whether this session already adopted the remote cart.
func (c *Collections) CloudLoaded() bool {
	return c.cloudLoaded
}

type Params struct {
	Store        localstore.Store
	Saver        Saver
	Logger       *logger.Logger
	Metrics      *metrics.SyncMetrics
	WriteTimeout time.Duration
}

type Engine struct {
	store        localstore.Store
	saver        Saver
	logg         *logger.Logger
	metrics      *metrics.SyncMetrics
	writeTimeout time.Duration
}

func New(p Params) *Engine {
	return &Engine{
		store:        p.Store,
		saver:        p.Saver,
		logg:         p.Logger,
		metrics:      p.Metrics,
		writeTimeout: p.WriteTimeout,
	}
}

// LoadLocal restores both collections from the Local Store.
func (e *Engine) LoadLocal(ctx context.Context, c *Collections) {
	c.Cart = localstore.LoadJSON[[]models.CartLine](ctx, e.store, e.logg, localstore.KeyCart)
	c.Wishlist = localstore.LoadJSON[[]string](ctx, e.store, e.logg, localstore.KeyWishlist)
}

// Begin arms the cloud-loaded gate for a freshly signed-in session.
func (e *Engine) Begin(c *Collections) {
	c.authenticated = true
	c.cloudLoaded = false
	c.remoteCart = ""
	c.remoteWish = ""
}

// End forgets the session and purges the persisted collections.
func (e *Engine) End(ctx context.Context, c *Collections) {
	c.authenticated = false
	c.cloudLoaded = false
	c.remoteCart = ""
	c.remoteWish = ""
	c.Cart = nil
	c.Wishlist = nil
	for _, key := range []string{localstore.KeyCart, localstore.KeyWishlist} {
		if err := e.store.Remove(ctx, key); err != nil {
			e.warn(ctx, "failed to purge local collection", key, err)
		}
	}
}

// ApplyProfile folds a remote profile snapshot into the collections. exists is false when
// the profile has not been created remotely yet; nothing is pushed in that case.
func (e *Engine) ApplyProfile(ctx context.Context, c *Collections, p *models.Profile, exists bool) {
	if !c.authenticated || p == nil {
		return
	}

	if p.Cart != nil {
		c.remoteCart = cart.Normalize(*p.Cart)
	}
	if p.Wishlist != nil {
		c.remoteWish = wishlist.Normalize(*p.Wishlist)
		c.Wishlist = append([]string(nil), (*p.Wishlist)...)
		e.persist(ctx, localstore.KeyWishlist, c.Wishlist)
	}

	if !c.cloudLoaded {
		if p.Cart != nil {
			c.Cart = models.CloneCart(*p.Cart)
			e.persist(ctx, localstore.KeyCart, c.Cart)
		}
		c.cloudLoaded = true
	}

	if !exists {
		return
	}
	e.syncCart(ctx, c)
	e.syncWishlist(ctx, c)
}

// SetCart is the only way the session changes the cart.
func (e *Engine) SetCart(ctx context.Context, c *Collections, lines []models.CartLine) {
	c.Cart = lines
	e.persist(ctx, localstore.KeyCart, c.Cart)
	e.syncCart(ctx, c)
}

// SetWishlist is the only way the session changes the wishlist.
func (e *Engine) SetWishlist(ctx context.Context, c *Collections, ids []string) {
	c.Wishlist = ids
	e.persist(ctx, localstore.KeyWishlist, c.Wishlist)
	e.syncWishlist(ctx, c)
}

func (e *Engine) syncCart(ctx context.Context, c *Collections) {
	if !c.authenticated || !c.cloudLoaded {
		return
	}
	local := cart.Normalize(c.Cart)
	if local == c.remoteCart {
		e.metrics.WriteSuppressed(collectionCart)
		return
	}
	payload := models.CloneCart(c.Cart)
	if payload == nil {
		payload = []models.CartLine{}
	}
	if e.push(ctx, collectionCart, map[string]any{models.FieldCart: payload}) {
		c.remoteCart = local
	}
}

func (e *Engine) syncWishlist(ctx context.Context, c *Collections) {
	if !c.authenticated || !c.cloudLoaded {
		return
	}
	local := wishlist.Normalize(c.Wishlist)
	if local == c.remoteWish {
		e.metrics.WriteSuppressed(collectionWishlist)
		return
	}
	payload := append([]string{}, c.Wishlist...)
	if e.push(ctx, collectionWishlist, map[string]any{models.FieldWishlist: payload}) {
		c.remoteWish = local
	}
}

// push reports whether the remote accepted the write. Failures are left for the next
// mutation or snapshot to retry.
func (e *Engine) push(ctx context.Context, collection string, partial map[string]any) bool {
	if e.saver == nil {
		return false
	}
	if e.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.writeTimeout)
		defer cancel()
	}
	if err := e.saver.SaveProfile(ctx, partial); err != nil {
		e.metrics.RemoteWrite(collection, metrics.ResultError)
		e.warn(ctx, "remote write failed, will retry on next change", collection, err)
		return false
	}
	e.metrics.RemoteWrite(collection, metrics.ResultOK)
	return true
}

func (e *Engine) persist(ctx context.Context, key string, value any) {
	if err := localstore.SaveJSON(ctx, e.store, key, value); err != nil {
		e.warn(ctx, "local write failed", key, err)
	}
}

func (e *Engine) warn(ctx context.Context, msg, target string, err error) {
	if e.logg == nil {
		return
	}
	ctx = e.logg.WithFields(ctx, map[string]any{"target": target, "error": err.Error()})
	e.logg.Warn(ctx, msg)
}
