package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okestore/storefront-sync/api/controllers"
	"github.com/okestore/storefront-sync/api/middleware"
	"github.com/okestore/storefront-sync/internal/notifications"
	"github.com/okestore/storefront-sync/internal/orders"
	"github.com/okestore/storefront-sync/internal/social"
	"github.com/okestore/storefront-sync/internal/support"
	"github.com/okestore/storefront-sync/pkg/config"
	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/events"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/redis"
)

// Deps carries everything the router hands to controllers. Redis, Publisher and Metrics
// are optional.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	Auth          controllers.AuthService
	Session       controllers.SessionService
	Verifications controllers.VerificationService
	Orders        orders.Service
	Notifications notifications.Service
	Support       support.Service
	Social        social.Service
	Preferences   controllers.PreferencesService

	// Publisher sends operator decisions to the approvals topic.
	Publisher events.Publisher
	Redis     *redis.Client
	Ready     map[string]controllers.Pinger
	Metrics   prometheus.Gatherer
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Recoverer(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	var idempotencyStore redis.IdempotencyStore
	if d.Redis != nil {
		idempotencyStore = d.Redis
	}
	idem := middleware.NewIdempotency(idempotencyStore, logg)
	idempotent := idem.Require(middleware.IdempotencyTTL)

	limits := cfg.RateLimit
	loginLimit := rateLimit(d.Redis, logg, middleware.RateLimitPolicy{
		Name:   "login",
		Window: limits.LoginWindow,
		Limits: map[middleware.LimitScope]int{middleware.ScopeIP: limits.LoginIPLimit, middleware.ScopeEmail: limits.LoginEmailLimit},
	})
	registerLimit := rateLimit(d.Redis, logg, middleware.RateLimitPolicy{
		Name:   "register",
		Window: limits.RegisterWindow,
		Limits: map[middleware.LimitScope]int{middleware.ScopeIP: limits.RegisterIPLimit, middleware.ScopeEmail: limits.RegisterEmailLimit},
	})
	ticketLimit := rateLimit(d.Redis, logg, middleware.RateLimitPolicy{
		Name:   "tickets",
		Window: limits.TicketWindow,
		Limits: map[middleware.LimitScope]int{middleware.ScopeIP: limits.TicketIPLimit, middleware.ScopeEmail: limits.TicketEmailLimit},
	})
	claimLimit := rateLimit(d.Redis, logg, middleware.RateLimitPolicy{
		Name:   "claims",
		Window: limits.ClaimWindow,
		Limits: map[middleware.LimitScope]int{middleware.ScopeAccount: limits.ClaimAccountLimit},
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Ready))
	})

	if d.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(loginLimit).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.With(registerLimit).Post("/register", controllers.AuthRegister(d.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
			r.Delete("/account", controllers.AuthDeleteAccount(d.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/session", controllers.SessionState(d.Session))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(d.Session))
			r.Delete("/", controllers.CartClear(d.Session))
			r.Post("/items", controllers.CartAddItem(d.Session, logg))
			r.Put("/items", controllers.CartUpdateItem(d.Session, logg))
			r.Delete("/items", controllers.CartRemoveItem(d.Session, logg))
		})

		r.Get("/wishlist", controllers.WishlistFetch(d.Session))
		r.Post("/wishlist/{productId}", controllers.WishlistToggle(d.Session, logg))

		// checkout creates orders and payment verifications
		r.With(idem.Require(middleware.CriticalIdempotencyTTL)).Post("/checkout", controllers.Checkout(d.Orders, logg))

		r.Get("/notifications", controllers.ListNotifications(d.Notifications, logg))
		r.Post("/notifications/read-all", controllers.MarkAllNotificationsRead(d.Notifications, logg))
		r.Delete("/notifications", controllers.ClearNotifications(d.Notifications, logg))

		r.With(ticketLimit, idempotent).Post("/tickets", controllers.TicketCreate(d.Support, logg))
		r.Get("/social/posts", controllers.SocialPostList(d.Social))

		r.Get("/preferences", controllers.PreferencesFetch(d.Preferences, logg))
		r.Put("/preferences/language", controllers.PreferencesSetLanguage(d.Preferences, logg))
		r.Put("/preferences/theme", controllers.PreferencesSetTheme(d.Preferences, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Patch("/profile", controllers.ProfileUpdate(d.Session, logg))
			r.Post("/profile/chat-messages", controllers.ProfileChatMessage(d.Session, logg))
			r.Post("/profile/downloads", controllers.ProfileDownload(d.Session, logg))
			r.Delete("/profile/readings/{readingId}", controllers.SavedReadingDelete(d.Session, logg))
			r.With(claimLimit, idempotent).Post("/verifications", controllers.VerificationCreate(d.Verifications, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.AccountRoleAdmin))

		r.Get("/verifications", controllers.VerificationListPending(d.Verifications, logg))
		r.With(idempotent).Post("/verifications/{verificationId}/approve", controllers.VerificationApprove(d.Verifications, d.Publisher, logg))
		r.With(idempotent).Post("/verifications/{verificationId}/discard", controllers.VerificationDiscard(d.Verifications, d.Publisher, logg))

		r.Get("/tickets", controllers.TicketList(d.Support))
		r.Patch("/tickets/{ticketId}", controllers.TicketSetStatus(d.Support, logg))

		r.With(idempotent).Post("/social/posts", controllers.SocialPostCreate(d.Social, logg))
		r.Put("/social/posts/{postId}", controllers.SocialPostUpdate(d.Social, logg))
		r.Delete("/social/posts/{postId}", controllers.SocialPostDelete(d.Social, logg))
	})

	return r
}

// rateLimit needs shared counters; without redis every policy passes through.
func rateLimit(client *redis.Client, logg *logger.Logger, policy middleware.RateLimitPolicy) func(http.Handler) http.Handler {
	if client == nil {
		return passThrough
	}
	return middleware.RateLimit(policy, client, logg)
}

func passThrough(next http.Handler) http.Handler { return next }
