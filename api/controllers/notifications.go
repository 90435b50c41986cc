package controllers

import (
	"net/http"

	"github.com/okestore/storefront-sync/api/responses"
	"github.com/okestore/storefront-sync/api/validators"
	"github.com/okestore/storefront-sync/internal/notifications"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/logger"
)

// ListNotifications returns a page of notifications, newest first, with the unread count.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// surfacing the list is what triggers the once-a-day message
		if _, err := svc.CheckDaily(r.Context()); err != nil {
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "daily notification check failed")
		}

		resp, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updated, err := svc.MarkAllRead(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"updated": updated})
	}
}

func ClearNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
