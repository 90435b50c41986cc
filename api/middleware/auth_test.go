package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okestore/storefront-sync/pkg/auth"
	"github.com/okestore/storefront-sync/pkg/config"
	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/events"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if resp.Header().Get("WWW-Authenticate") == "" {
		t.Fatal("expected a bearer challenge on 401")
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]struct {
		header string
		want   string
		ok     bool
	}{
		"bearer":       {header: "Bearer abc.def", want: "abc.def", ok: true},
		"lower scheme": {header: "bearer   abc", want: "abc", ok: true},
		"bare token":   {header: "abc", want: "abc", ok: true},
		"empty":        {header: "  ", ok: false},
		"scheme only":  {header: "Bearer ", want: "Bearer", ok: true},
	}
	for name, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tc.header)
		got, ok := bearerToken(req)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%s: got (%q, %v) want (%q, %v)", name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	accountID := uuid.New()
	token := mintTestToken(t, accountID, enums.AccountRoleAdmin)

	var captured struct {
		account string
		role    string
		email   string
		actor   *events.ActorRef
	}
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.account = AccountIDFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		captured.email = EmailFromContext(r.Context())
		captured.actor = events.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.account != accountID.String() {
		t.Fatalf("expected account %s got %s", accountID, captured.account)
	}
	if captured.role != string(enums.AccountRoleAdmin) {
		t.Fatalf("expected role admin got %s", captured.role)
	}
	if captured.email != "ops@example.com" {
		t.Fatalf("unexpected email %q", captured.email)
	}
	if captured.actor == nil || captured.actor.AccountID != accountID.String() {
		t.Fatalf("expected event actor to be seeded, got %+v", captured.actor)
	}
}

func TestRequireRole(t *testing.T) {
	handler := Auth(testJWT, nil)(RequireRole(nil, enums.AccountRoleAdmin)(okHandler()))

	cases := map[enums.AccountRole]int{
		enums.AccountRoleAdmin:    http.StatusOK,
		enums.AccountRoleCustomer: http.StatusForbidden,
	}
	for role, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintTestToken(t, uuid.New(), role))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != want {
			t.Fatalf("role %s: expected %d got %d", role, want, resp.Code)
		}
	}
}

func mintTestToken(t *testing.T, accountID uuid.UUID, role enums.AccountRole) string {
	t.Helper()
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{
		AccountID: accountID,
		Email:     "ops@example.com",
		Role:      role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRequireRoleWithoutCaller(t *testing.T) {
	handler := RequireRole(nil, enums.AccountRoleAdmin)(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestContextHelpersMerge(t *testing.T) {
	ctx := WithEmail(context.Background(), "ops@example.com")
	ctx = WithAccount(ctx, "acct-7", string(enums.AccountRoleCustomer))
	caller, ok := CallerFromContext(ctx)
	if !ok {
		t.Fatal("expected caller in context")
	}
	if caller.Email != "ops@example.com" || caller.AccountID != "acct-7" || caller.Role != "customer" {
		t.Fatalf("unexpected caller %+v", caller)
	}
}
