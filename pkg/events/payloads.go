package events

import (
	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/models"
)

// VerificationRequested announces a new pending request to operators.
type VerificationRequested struct {
	Request models.VerificationRequest `json:"request"`
}

// VerificationDecision is an operator's approve or discard for one request.
type VerificationDecision struct {
	RequestID string `json:"requestId"`
}

// VerificationUnresolved is the audit record for an approval whose account could not be found.
type VerificationUnresolved struct {
	RequestID string                 `json:"requestId"`
	Type      enums.VerificationType `json:"type"`
	UserEmail string                 `json:"userEmail,omitempty"`
	UserPhone string                 `json:"userPhone,omitempty"`
	PlanName  string                 `json:"planName,omitempty"`
}
