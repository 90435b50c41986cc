package enums

import "fmt"

// VerificationType names the claim an operator is asked to confirm.
type VerificationType string

const (
	VerificationTypeProduct      VerificationType = "PRODUCT"
	VerificationTypeSubscription VerificationType = "SUBSCRIPTION"
	VerificationTypeSupportChat  VerificationType = "SUPPORT_CHAT"
)

var validVerificationTypes = []VerificationType{
	VerificationTypeProduct,
	VerificationTypeSubscription,
	VerificationTypeSupportChat,
}

// String implements fmt.Stringer.
func (v VerificationType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VerificationType.
func (v VerificationType) IsValid() bool {
	for _, candidate := range validVerificationTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVerificationType converts raw input into a VerificationType.
func ParseVerificationType(value string) (VerificationType, error) {
	for _, candidate := range validVerificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid verification type %q", value)
}
