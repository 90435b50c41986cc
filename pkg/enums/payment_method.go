package enums

import "fmt"

// PaymentMethod describes how a buyer intends to settle an order.
type PaymentMethod string

const (
	// PaymentMethodPrepaid is an out-of-band UPI transfer that an operator must confirm.
	PaymentMethodPrepaid PaymentMethod = "PREPAID"
	// PaymentMethodCOD is cash on delivery.
	PaymentMethodCOD PaymentMethod = "COD"
)

func (p PaymentMethod) String() string { return string(p) }

func (p PaymentMethod) IsValid() bool {
	return p == PaymentMethodPrepaid || p == PaymentMethodCOD
}

// NeedsVerification reports whether orders paid this way wait for operator approval.
func (p PaymentMethod) NeedsVerification() bool {
	return p == PaymentMethodPrepaid
}

// InitialStatuses returns the order and payment status a new order starts in.
func (p PaymentMethod) InitialStatuses() (OrderStatus, PaymentStatus) {
	if p.NeedsVerification() {
		return OrderStatusVerificationPending, PaymentStatusVerificationPending
	}
	return OrderStatusProcessing, PaymentStatusPending
}

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	if p := PaymentMethod(value); p.IsValid() {
		return p, nil
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
