package middleware

import (
	"net/http"
	"strings"

	"github.com/okestore/storefront-sync/api/responses"
	pkgAuth "github.com/okestore/storefront-sync/pkg/auth"
	"github.com/okestore/storefront-sync/pkg/config"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/events"
	"github.com/okestore/storefront-sync/pkg/logger"
)

// Auth requires a valid bearer token. The caller it describes is stored on the request
// context for handlers, the event publisher and the log line.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, r, logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				unauthorized(w, r, logg, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			caller := Caller{AccountID: claims.AccountID.String(), Role: string(claims.Role), Email: claims.Email}
			ctx := withCaller(r.Context(), caller)
			ctx = events.WithActor(ctx, events.ActorRef{AccountID: caller.AccountID, Role: caller.Role})
			if logg != nil {
				fields := map[string]any{"account_id": caller.AccountID, "actor_role": caller.Role}
				if claims.IsAdmin() {
					fields["operator"] = true
				}
				ctx = logg.WithFields(ctx, fields)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken accepts "Bearer <token>" with any scheme casing, or a bare token.
func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, rest, found := strings.Cut(header, " "); found && strings.EqualFold(scheme, "bearer") {
		header = strings.TrimSpace(rest)
	}
	return header, header != ""
}

func unauthorized(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="okestore"`)
	responses.WriteError(r.Context(), logg, w, err)
}
