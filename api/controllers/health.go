package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okestore/storefront-sync/api/responses"
	"github.com/okestore/storefront-sync/pkg/config"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/logger"
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readyTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Okestore-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency in parallel. Any failure turns the probe into a 503
// whose details name the state of each dependency.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Okestore-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		var (
			mu     sync.Mutex
			states = make(map[string]string, len(deps))
			failed []error
		)
		var g errgroup.Group
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			g.Go(func() error {
				err := dep.Ping(ctx)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					states[name] = "down"
					failed = append(failed, fmt.Errorf("%s: %w", name, err))
					return nil
				}
				states[name] = "up"
				return nil
			})
		}
		_ = g.Wait()

		if len(failed) > 0 {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, errors.Join(failed...), "dependencies unavailable")
			responses.WriteError(r.Context(), logg, w, err.WithDetails(states))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": states})
	}
}
