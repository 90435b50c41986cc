package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"go.uber.org/multierr"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
		expose    bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true, expose: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required", expose: true},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied", expose: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", expose: true},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", expose: true},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true, expose: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "too many requests", retryable: true, expose: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		want := Metadata{
			HTTPStatus:     tt.status,
			Retryable:      tt.retryable,
			PublicMessage:  tt.publicMsg,
			DetailsAllowed: tt.detailsOK,
			ExposeMessage:  tt.expose,
		}
		if got := MetadataFor(tt.code); got != want {
			t.Fatalf("code %s: expected %+v got %+v", tt.code, want, got)
		}
	}
}

func TestErrorText(t *testing.T) {
	if got := New(CodeNotFound, "order missing").Error(); got != "NOT_FOUND: order missing" {
		t.Fatalf("unexpected text %q", got)
	}
	wrapped := Wrap(CodeDependency, stdErrors.New("timeout"), "load profile")
	if got := wrapped.Error(); got != "DEPENDENCY_ERROR: load profile: timeout" {
		t.Fatalf("unexpected text %q", got)
	}
	var nilErr *Error
	if nilErr.Code() != CodeInternal || nilErr.Error() != "" || nilErr.WithDetails("x") != nil {
		t.Fatal("nil *Error should be inert")
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCauseAndCode(t *testing.T) {
	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeDependency, cause, "save profile")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if !IsCode(fmt.Errorf("outer: %w", wrapped), CodeDependency) {
		t.Fatalf("IsCode should see through fmt wrapping")
	}
	if IsCode(cause, CodeDependency) {
		t.Fatalf("plain errors carry no code")
	}
}

func TestDumpWalksChain(t *testing.T) {
	err := fmt.Errorf("approve: %w", Wrap(CodeDependency, stdErrors.New("unavailable"), "update order"))
	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if !dump.Retryable {
		t.Fatalf("dependency errors are retryable")
	}
	if len(dump.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(dump.Chain), dump.Chain)
	}
}

func TestDumpFollowsJoinedErrors(t *testing.T) {
	err := multierr.Combine(
		fmt.Errorf("daily-notification: %w", stdErrors.New("boom")),
		New(CodeConflict, "already claimed"),
	)
	dump := Dump(err)
	// root, two members, and the cause under the first member
	if len(dump.Chain) != 4 {
		t.Fatalf("expected 4 chain entries, got %d: %v", len(dump.Chain), dump.Chain)
	}
	fields := dump.Fields()
	if fields["error_code"] != CodeConflict {
		t.Fatalf("expected conflict code in fields, got %v", fields["error_code"])
	}
	if _, ok := fields["error_chain"]; !ok {
		t.Fatal("expected chain in fields")
	}
}

func TestDumpFieldsOmitTrivialChain(t *testing.T) {
	fields := Dump(stdErrors.New("plain")).Fields()
	if _, ok := fields["error_code"]; ok {
		t.Fatal("plain errors have no code")
	}
	if _, ok := fields["error_chain"]; ok {
		t.Fatal("single error needs no chain")
	}
}
