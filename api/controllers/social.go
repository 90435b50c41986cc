package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okestore/storefront-sync/api/responses"
	"github.com/okestore/storefront-sync/api/validators"
	"github.com/okestore/storefront-sync/internal/social"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/okestore/storefront-sync/pkg/types"
)

type socialPostRequest struct {
	Content   string   `json:"content" validate:"required,max=5000"`
	ImageURL  string   `json:"image" validate:"omitempty,url"`
	Platforms []string `json:"platforms" validate:"max=10,dive,required,max=32"`
}

func (b socialPostRequest) toModel() models.SocialPost {
	return models.SocialPost{
		Content:   validators.SanitizeString(b.Content, 5000),
		ImageURL:  b.ImageURL,
		Platforms: b.Platforms,
	}
}

func SocialPostList(svc social.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts := svc.List(r.Context())
		if posts == nil {
			posts = []models.SocialPost{}
		}
		responses.WriteSuccess(w, types.Items(posts))
	}
}

func SocialPostCreate(svc social.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body socialPostRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		post, err := svc.Create(r.Context(), body.toModel())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, post)
	}
}

func SocialPostUpdate(svc social.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body socialPostRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		post := body.toModel()
		post.ID = chi.URLParam(r, "postId")
		updated, err := svc.Update(r.Context(), post)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func SocialPostDelete(svc social.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "postId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
