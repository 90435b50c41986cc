package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okestore/storefront-sync/api/middleware"
	"github.com/okestore/storefront-sync/api/responses"
	"github.com/okestore/storefront-sync/api/validators"
	"github.com/okestore/storefront-sync/pkg/enums"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/events"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/okestore/storefront-sync/pkg/types"
)

type createVerificationRequest struct {
	Type          enums.VerificationType `json:"type" validate:"required,enum"`
	OrderID       string                 `json:"orderId"`
	UserEmail     string                 `json:"userEmail" validate:"omitempty,email"`
	UserPhone     string                 `json:"userPhone" validate:"omitempty,max=32"`
	UserName      string                 `json:"userName" validate:"omitempty,max=120"`
	PlanName      string                 `json:"planName" validate:"omitempty,max=120"`
	Amount        string                 `json:"amount"`
	TransactionID string                 `json:"transactionId" validate:"omitempty,max=128"`
	EvidenceImage string                 `json:"screenshot"`
}

type decisionRequest struct {
	// Async hands the decision to the approvals worker instead of applying it inline.
	Async bool `json:"async"`
}

type decisionResponse struct {
	ID      string                `json:"id"`
	Outcome enums.ApprovalOutcome `json:"outcome,omitempty"`
	Queued  bool                  `json:"queued,omitempty"`
}

// VerificationCreate queues a payment claim for operator review. A signed-in caller's
// email is used when the claim names no contact.
func VerificationCreate(svc VerificationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createVerificationRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req := models.VerificationRequest{
			Type:          body.Type,
			OrderID:       strings.TrimSpace(body.OrderID),
			UserEmail:     strings.TrimSpace(body.UserEmail),
			UserPhone:     strings.TrimSpace(body.UserPhone),
			UserName:      validators.SanitizeString(body.UserName, 120),
			PlanName:      strings.TrimSpace(body.PlanName),
			Amount:        strings.TrimSpace(body.Amount),
			TransactionID: strings.TrimSpace(body.TransactionID),
			EvidenceImage: body.EvidenceImage,
		}
		if req.UserEmail == "" && req.UserPhone == "" {
			req.UserEmail = middleware.EmailFromContext(r.Context())
		}

		created, err := svc.Create(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// VerificationListPending lists open requests, optionally narrowed by ?type=.
func VerificationListPending(svc VerificationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := validators.ParseQueryEnum[enums.VerificationType](r, "type")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pending, err := svc.Pending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if kind != "" {
			pending = slices.DeleteFunc(pending, func(req models.VerificationRequest) bool {
				return req.Type != kind
			})
		}
		responses.WriteSuccess(w, types.Items(pending))
	}
}

// VerificationApprove applies the grant for a pending request.
func VerificationApprove(svc VerificationService, publisher events.Publisher, logg *logger.Logger) http.HandlerFunc {
	return verificationDecision(enums.EventVerificationApproved, svc.Approve, publisher, logg)
}

// VerificationDiscard drops a pending request without granting anything.
func VerificationDiscard(svc VerificationService, publisher events.Publisher, logg *logger.Logger) http.HandlerFunc {
	return verificationDecision(enums.EventVerificationDiscarded, svc.Discard, publisher, logg)
}

func verificationDecision(
	eventType enums.EventType,
	decide func(context.Context, string) (enums.ApprovalOutcome, error),
	publisher events.Publisher,
	logg *logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "verificationId"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "verification id is required"))
			return
		}

		var body decisionRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(w, r, &body); err != nil && !errors.Is(err, io.EOF) {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if body.Async {
			if publisher == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "approvals topic not configured"))
				return
			}
			if err := publisher.Publish(r.Context(), eventType, events.VerificationDecision{RequestID: id}); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue decision"))
				return
			}
			responses.WriteSuccessStatus(w, http.StatusAccepted, decisionResponse{ID: id, Queued: true})
			return
		}

		outcome, err := decide(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, decisionResponse{ID: id, Outcome: outcome})
	}
}
