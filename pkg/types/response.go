// Package types holds the JSON envelopes shared by every API response.
package types

// SuccessEnvelope wraps every 2xx body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public face of a failed request. RequestID echoes X-Request-Id so
// callers can quote it when reporting a problem.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ItemList is the body of collection endpoints that are not cursor paginated.
type ItemList[T any] struct {
	Items []T `json:"items"`
}

// Items wraps a slice for an ItemList. A nil slice renders as [] so clients never see null.
func Items[T any](items []T) ItemList[T] {
	if items == nil {
		items = []T{}
	}
	return ItemList[T]{Items: items}
}
