package controllers

import (
	"net/http"

	"github.com/okestore/storefront-sync/api/middleware"
	"github.com/okestore/storefront-sync/api/responses"
	"github.com/okestore/storefront-sync/api/validators"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"max=120"`
}

type authResponse struct {
	AccessToken string                  `json:"accessToken"`
	Identity    *models.SessionIdentity `json:"identity"`
}

// AuthLogin signs the hosted session in and returns the bearer token.
func AuthLogin(svc AuthService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := svc.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, authResponse{AccessToken: id.Token, Identity: id})
	}
}

// AuthRegister creates the account and signs it in.
func AuthRegister(svc AuthService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body registerRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := svc.Register(r.Context(), body.Email, body.Password, validators.SanitizeString(body.DisplayName, 120))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, authResponse{AccessToken: id.Token, Identity: id})
	}
}

func AuthLogout(svc AuthService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireSessionOwner(r, svc.Identity()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Logout(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AuthDeleteAccount deletes the signed-in account and ends the session.
func AuthDeleteAccount(svc AuthService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireSessionOwner(r, svc.Identity()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteCurrentUser(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// requireSessionOwner rejects callers whose token is not for the account signed into the
// hosted session.
func requireSessionOwner(r *http.Request, current *models.SessionIdentity) error {
	if !current.Authenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
	}
	if middleware.AccountIDFromContext(r.Context()) != current.AccountID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "token does not match the active session")
	}
	return nil
}
