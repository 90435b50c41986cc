package errors

import (
	"errors"
	"fmt"
)

// maxChain bounds how many causes a Trace records.
const maxChain = 16

// Trace is a log-friendly view of an error and everything it wraps.
type Trace struct {
	Message   string   `json:"message"`
	Code      Code     `json:"code,omitempty"`
	Retryable bool     `json:"retryable"`
	Chain     []string `json:"chain,omitempty"`
}

// Dump walks err breadth first, following both single and joined (multierr, errors.Join)
// wrapping.
func Dump(err error) Trace {
	if err == nil {
		return Trace{}
	}
	t := Trace{Message: err.Error()}
	if typed := As(err); typed != nil {
		t.Code = typed.Code()
		t.Retryable = MetadataFor(typed.Code()).Retryable
	}

	queue := []error{err}
	for len(queue) > 0 && len(t.Chain) < maxChain {
		e := queue[0]
		queue = queue[1:]
		t.Chain = append(t.Chain, fmt.Sprintf("%T: %v", e, e))
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			queue = append(queue, u.Unwrap()...)
		default:
			if next := errors.Unwrap(e); next != nil {
				queue = append(queue, next)
			}
		}
	}
	return t
}

// Fields renders the trace for logger.WithFields.
func (t Trace) Fields() map[string]any {
	fields := map[string]any{
		"error":     t.Message,
		"retryable": t.Retryable,
	}
	if t.Code != "" {
		fields["error_code"] = t.Code
	}
	if len(t.Chain) > 1 {
		fields["error_chain"] = t.Chain
	}
	return fields
}
