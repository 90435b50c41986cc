package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okestore/storefront-sync/api/responses"
	"github.com/okestore/storefront-sync/api/validators"
	"github.com/okestore/storefront-sync/internal/support"
	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/okestore/storefront-sync/pkg/types"
)

type createTicketRequest struct {
	Category    string `json:"category" validate:"required,max=64"`
	Description string `json:"description" validate:"required,max=4000"`
	Name        string `json:"name" validate:"max=120"`
	Phone       string `json:"phone" validate:"max=32"`
	Email       string `json:"email" validate:"omitempty,email"`
}

type ticketStatusRequest struct {
	Status enums.TicketStatus `json:"status" validate:"required,enum"`
}

func TicketList(svc support.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tickets := svc.List(r.Context())
		if tickets == nil {
			tickets = []models.SupportTicket{}
		}
		responses.WriteSuccess(w, types.Items(tickets))
	}
}

func TicketCreate(svc support.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createTicketRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticket, err := svc.Create(r.Context(), models.SupportTicket{
			Category:    validators.SanitizeString(body.Category, 64),
			Description: validators.SanitizeString(body.Description, 4000),
			Name:        validators.SanitizeString(body.Name, 120),
			Phone:       validators.SanitizeString(body.Phone, 32),
			Email:       validators.SanitizeString(body.Email, 320),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ticket)
	}
}

// TicketSetStatus moves a ticket between Open and Closed.
func TicketSetStatus(svc support.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ticketStatusRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticket, err := svc.SetStatus(r.Context(), chi.URLParam(r, "ticketId"), body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ticket)
	}
}
