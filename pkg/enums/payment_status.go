package enums

import "fmt"

// PaymentStatus tracks whether the money side of an order has been confirmed.
type PaymentStatus string

const (
	PaymentStatusVerificationPending PaymentStatus = "VERIFICATION_PENDING"
	PaymentStatusPending             PaymentStatus = "PENDING"
	PaymentStatusCompleted           PaymentStatus = "COMPLETED"
)

func (s PaymentStatus) String() string { return string(s) }

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusVerificationPending, PaymentStatusPending, PaymentStatusCompleted:
		return true
	}
	return false
}

// AwaitingApproval reports whether an operator decision can still move this payment.
func (s PaymentStatus) AwaitingApproval() bool {
	return s == PaymentStatusVerificationPending
}

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	if s := PaymentStatus(value); s.IsValid() {
		return s, nil
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
