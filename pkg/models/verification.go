package models

import "github.com/okestore/storefront-sync/pkg/enums"

// VerificationRequest is a claim waiting for an operator. Exactly one correlation key is
// meaningful per type: OrderID for PRODUCT, email/phone for the others.
type VerificationRequest struct {
	ID            string                 `json:"id"`
	Type          enums.VerificationType `json:"type" validate:"required,oneof=PRODUCT SUBSCRIPTION SUPPORT_CHAT"`
	OrderID       string                 `json:"orderId,omitempty"`
	UserEmail     string                 `json:"userEmail,omitempty" validate:"omitempty,email"`
	UserPhone     string                 `json:"userPhone,omitempty"`
	UserName      string                 `json:"userName,omitempty"`
	PlanName      string                 `json:"planName,omitempty"`
	Amount        string                 `json:"amount,omitempty"`
	TransactionID string                 `json:"transactionId,omitempty"`
	EvidenceImage string                 `json:"screenshot,omitempty"`
	RequestDate   string                 `json:"requestDate"`
}
