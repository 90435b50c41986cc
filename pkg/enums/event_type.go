package enums

import "fmt"

// EventType names a message published on the verification topics.
type EventType string

const (
	EventVerificationRequested  EventType = "verification.requested"
	EventVerificationApproved   EventType = "verification.approved"
	EventVerificationDiscarded  EventType = "verification.discarded"
	EventVerificationUnresolved EventType = "verification.unresolved"
)

var validEventTypes = []EventType{
	EventVerificationRequested,
	EventVerificationApproved,
	EventVerificationDiscarded,
	EventVerificationUnresolved,
}

// String implements fmt.Stringer.
func (e EventType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EventType.
func (e EventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEventType converts raw input into an EventType.
func ParseEventType(value string) (EventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
