package controllers

import (
	"context"
	"net/http"

	"github.com/okestore/storefront-sync/api/responses"
	"github.com/okestore/storefront-sync/api/validators"
	"github.com/okestore/storefront-sync/internal/preferences"
	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/logger"
)

// PreferencesService is the subset of preferences.Store the handlers need.
type PreferencesService interface {
	Get(ctx context.Context) (preferences.Preferences, error)
	SetLanguage(ctx context.Context, lang enums.Language) error
	SetTheme(ctx context.Context, theme string) error
}

type languageRequest struct {
	Language enums.Language `json:"language" validate:"required,enum"`
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,max=32"`
}

func PreferencesFetch(svc PreferencesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefs, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}

func PreferencesSetLanguage(svc PreferencesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body languageRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetLanguage(r.Context(), body.Language); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writePreferences(w, r, svc, logg)
	}
}

func PreferencesSetTheme(svc PreferencesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body themeRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetTheme(r.Context(), validators.SanitizeString(body.Theme, 32)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writePreferences(w, r, svc, logg)
	}
}

func writePreferences(w http.ResponseWriter, r *http.Request, svc PreferencesService, logg *logger.Logger) {
	prefs, err := svc.Get(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, prefs)
}
