package orders

import (
	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/models"
)

// CheckoutInput is what the buyer submits at checkout.
type CheckoutInput struct {
	Customer      models.CustomerDetails `json:"customerDetails" validate:"required"`
	PaymentMethod enums.PaymentMethod    `json:"paymentMethod" validate:"required,oneof=PREPAID COD"`
	TransactionID string                 `json:"transactionId,omitempty" validate:"required_if=PaymentMethod PREPAID"`
	EvidenceImage string                 `json:"paymentScreenshot,omitempty"`
}

// CheckoutResult pairs the placed order with the verification raised for it, if any.
type CheckoutResult struct {
	Order        models.Order                `json:"order"`
	Verification *models.VerificationRequest `json:"verification,omitempty"`
}
