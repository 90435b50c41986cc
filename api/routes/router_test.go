package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/okestore/storefront-sync/api/controllers"
	"github.com/okestore/storefront-sync/internal/notifications"
	"github.com/okestore/storefront-sync/internal/preferences"
	"github.com/okestore/storefront-sync/internal/session"
	"github.com/okestore/storefront-sync/internal/social"
	"github.com/okestore/storefront-sync/internal/support"
	pkgAuth "github.com/okestore/storefront-sync/pkg/auth"
	"github.com/okestore/storefront-sync/pkg/config"
	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/localstore"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/metrics"
	"github.com/okestore/storefront-sync/pkg/models"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, string, string) (*models.SessionIdentity, error) {
	return &models.SessionIdentity{AccountID: "acct-1", Token: "token"}, nil
}

func (stubAuthService) Register(context.Context, string, string, string) (*models.SessionIdentity, error) {
	return &models.SessionIdentity{AccountID: "acct-1", Token: "token"}, nil
}

func (stubAuthService) Logout(context.Context) error { return nil }

func (stubAuthService) DeleteCurrentUser(context.Context) error { return nil }

func (stubAuthService) Identity() *models.SessionIdentity { return nil }

type stubSession struct{}

func (stubSession) Snapshot() session.View { return session.View{} }

func (stubSession) Identity() *models.SessionIdentity { return nil }

func (stubSession) AddToCart(context.Context, models.Product, int, string, *string) []models.CartLine {
	return nil
}

func (stubSession) UpdateQuantity(context.Context, string, string, int, *string) []models.CartLine {
	return nil
}

func (stubSession) RemoveItem(context.Context, string, string, *string) []models.CartLine {
	return nil
}

func (stubSession) ClearCart(context.Context) {}

func (stubSession) ToggleWishlist(context.Context, string) []string { return nil }

func (stubSession) UpdateProfile(context.Context, session.ProfileUpdate) error { return nil }

func (stubSession) IncrementChatCount(context.Context) error { return nil }

func (stubSession) TrackDownload(context.Context) error { return nil }

func (stubSession) DeleteSavedReading(context.Context, string) error { return nil }

type stubVerifications struct{}

func (stubVerifications) Create(_ context.Context, req models.VerificationRequest) (models.VerificationRequest, error) {
	return req, nil
}

func (stubVerifications) Pending(context.Context) ([]models.VerificationRequest, error) {
	return nil, nil
}

func (stubVerifications) Approve(context.Context, string) (enums.ApprovalOutcome, error) {
	return enums.ApprovalOutcomeApplied, nil
}

func (stubVerifications) Discard(context.Context, string) (enums.ApprovalOutcome, error) {
	return enums.ApprovalOutcomeDiscarded, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Env: "test"},
		JWT:  config.JWTConfig{Secret: "secret", Issuer: "okestore", ExpirationMinutes: 60},
		HTTP: config.HTTPConfig{CORSOrigins: []string{"http://localhost:3000"}},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := localstore.NewMemory()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	notificationsSvc, err := notifications.NewService(notifications.NewRepository(store, logg), notifications.Options{Logger: logg})
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	supportSvc, err := support.NewService(store, logg, nil)
	if err != nil {
		t.Fatalf("support: %v", err)
	}
	socialSvc, err := social.NewService(store, logg, nil)
	if err != nil {
		t.Fatalf("social: %v", err)
	}

	reg := prometheus.NewRegistry()
	metrics.NewSyncMetrics(reg)

	return NewRouter(Deps{
		Config:        testConfig(),
		Logger:        logg,
		Auth:          stubAuthService{},
		Session:       stubSession{},
		Verifications: stubVerifications{},
		Notifications: notificationsSvc,
		Support:       supportSvc,
		Social:        socialSvc,
		Preferences:   preferences.New(store),
		Ready:         map[string]controllers.Pinger{"local": stubPinger{}},
		Metrics:       reg,
	})
}

func bearer(t *testing.T, role enums.AccountRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now(), pkgAuth.AccessTokenPayload{
		AccountID: uuid.New(),
		Email:     "ops@example.com",
		Role:      role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestMetricsRoute(t *testing.T) {
	router := newTestRouter(t)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicSessionRoutes(t *testing.T) {
	router := newTestRouter(t)
	cases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/session", ""},
		{http.MethodGet, "/api/v1/cart", ""},
		{http.MethodDelete, "/api/v1/cart", ""},
		{http.MethodGet, "/api/v1/wishlist", ""},
		{http.MethodPost, "/api/v1/wishlist/p1", ""},
		{http.MethodGet, "/api/v1/notifications", ""},
		{http.MethodGet, "/api/v1/social/posts", ""},
		{http.MethodGet, "/api/v1/preferences", ""},
		{http.MethodPut, "/api/v1/preferences/theme", `{"theme":"dawn"}`},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, httptest.NewRequest(tc.method, tc.path, body))
			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
			}
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)
	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPatch, "/api/v1/profile"},
		{http.MethodPost, "/api/v1/verifications"},
		{http.MethodPost, "/api/v1/auth/logout"},
		{http.MethodDelete, "/api/v1/auth/account"},
		{http.MethodGet, "/api/admin/v1/verifications"},
		{http.MethodGet, "/api/admin/v1/tickets"},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(tc.method, tc.path, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/verifications", nil)
	req.Header.Set("Authorization", bearer(t, enums.AccountRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/v1/verifications", nil)
	req.Header.Set("Authorization", bearer(t, enums.AccountRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminApproveInline(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/verifications/v-1/approve", nil)
	req.Header.Set("Authorization", bearer(t, enums.AccountRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"outcome":"applied"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestLoginRoute(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.co","password":"secret1"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"accessToken":"token"`) {
		t.Fatalf("missing token in %s", resp.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/stores", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
