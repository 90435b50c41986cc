// Package firestore backs the remote stores with Cloud Firestore realtime snapshots.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/okestore/storefront-sync/pkg/config"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/remote"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client owns the Firestore connection and the collection layout.
type Client struct {
	fs     *firestore.Client
	cols   config.FirestoreConfig
	logg   *logger.Logger
	closer func() error
}

// New initializes a firebase app for the project and opens its Firestore client.
func New(ctx context.Context, gcp config.GCPConfig, cols config.FirestoreConfig, logg *logger.Logger) (*Client, error) {
	var opts []option.ClientOption
	if gcp.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(gcp.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: gcp.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get firestore client: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "project_id", gcp.ProjectID), "firestore client ready")
	}
	return &Client{fs: fs, cols: cols, logg: logg, closer: fs.Close}, nil
}

// Backend exposes the client through the collaborator bundle.
func (c *Client) Backend() remote.Backend {
	return remote.Backend{
		Profiles:      &ProfileStore{c: c},
		Orders:        &OrderStore{c: c},
		Verifications: &VerificationStore{c: c},
		Accounts:      &AccountLookup{c: c},
		SavedItems:    &SavedItemStore{c: c},
	}
}

// Ping performs a cheap read to confirm the project is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.fs.Collection(c.cols.UsersCollection).Limit(1).Documents(ctx).GetAll()
	return err
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// streamEnded reports errors that mean the listener was stopped on purpose.
func streamEnded(ctx context.Context, err error) bool {
	if errors.Is(err, iterator.Done) || ctx.Err() != nil {
		return true
	}
	code := status.Code(err)
	return code == codes.Canceled || code == codes.DeadlineExceeded
}

// pump forwards values from a snapshot iterator until it stops or ctx is cancelled.
// It owns out and closes it on return.
func pump[T any](ctx context.Context, c *Client, stream string, next func() (T, error), out chan<- T) {
	defer close(out)
	for {
		value, err := next()
		if err != nil {
			if !streamEnded(ctx, err) && c.logg != nil {
				c.logg.Error(c.logg.WithField(ctx, "stream", stream), "firestore snapshot listener failed", err)
			}
			return
		}
		select {
		case out <- value:
		case <-ctx.Done():
			return
		}
	}
}

// listen starts pump in a goroutine and returns the subscription that stops it.
func listen[T any](ctx context.Context, c *Client, stream string, next func() (T, error), stop func()) *remote.Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan T, 1)
	go pump(ctx, c, stream, next, out)
	return remote.NewSubscription[T](out, func() {
		cancel()
		stop()
	})
}
