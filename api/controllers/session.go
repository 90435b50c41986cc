package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okestore/storefront-sync/api/responses"
	"github.com/okestore/storefront-sync/api/validators"
	"github.com/okestore/storefront-sync/internal/session"
	"github.com/okestore/storefront-sync/pkg/logger"
)

// SessionState returns the full session view with derived entitlements.
func SessionState(svc SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Snapshot())
	}
}

type profileUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=120"`
	Phone   *string `json:"phone" validate:"omitempty,max=32"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	City    *string `json:"city" validate:"omitempty,max=120"`
	Pincode *string `json:"pincode" validate:"omitempty,max=16"`
}

func ProfileUpdate(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireSessionOwner(r, svc.Identity()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body profileUpdateRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update := session.ProfileUpdate{
			Name:    body.Name,
			Phone:   body.Phone,
			Address: body.Address,
			City:    body.City,
			Pincode: body.Pincode,
		}
		if err := svc.UpdateProfile(r.Context(), update); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.Snapshot())
	}
}

// ProfileChatMessage records one sent chat message against the free allowance.
func ProfileChatMessage(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireSessionOwner(r, svc.Identity()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.IncrementChatCount(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.Snapshot().Entitlements)
	}
}

// ProfileDownload consumes one download from the quota.
func ProfileDownload(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireSessionOwner(r, svc.Identity()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.TrackDownload(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.Snapshot().Entitlements)
	}
}

func SavedReadingDelete(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireSessionOwner(r, svc.Identity()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteSavedReading(r.Context(), chi.URLParam(r, "readingId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
