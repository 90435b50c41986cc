package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okestore/storefront-sync/api/responses"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/logger"
)

// Counter is the shared fixed-window counter behind the limiter.
type Counter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// LimitScope names what a request is counted against.
type LimitScope string

const (
	ScopeIP      LimitScope = "ip"
	ScopeEmail   LimitScope = "email"
	ScopeAccount LimitScope = "account"
)

// RateLimitPolicy caps requests per window for each configured scope. A zero limit turns
// that scope off.
type RateLimitPolicy struct {
	Name   string
	Window time.Duration
	Limits map[LimitScope]int
}

func (p RateLimitPolicy) active() bool {
	if p.Window <= 0 {
		return false
	}
	for _, limit := range p.Limits {
		if limit > 0 {
			return true
		}
	}
	return false
}

// RateLimit rejects requests over the policy with 429. Email subjects come from the JSON
// body, which is restored for the next handler; account subjects need Auth to run first.
func RateLimit(policy RateLimitPolicy, counter Counter, logg *logger.Logger) func(http.Handler) http.Handler {
	name := strings.ToLower(strings.TrimSpace(policy.Name))
	return func(next http.Handler) http.Handler {
		if counter == nil || !policy.active() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			for _, scope := range []LimitScope{ScopeIP, ScopeAccount, ScopeEmail} {
				limit := policy.Limits[scope]
				if limit <= 0 {
					continue
				}
				subject, err := limitSubject(r, scope)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
					return
				}
				if subject == "" {
					continue
				}
				key := counter.RateLimitKey(name + ":" + string(scope) + ":" + subject)
				count, err := counter.IncrWithTTL(ctx, key, policy.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(limit) {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":         name,
							"scope":          scope,
							"attempts":       count,
							"limit":          limit,
							"window_seconds": int(policy.Window.Seconds()),
						}), "rate limit exceeded")
					}
					w.Header().Set("Retry-After", strconv.Itoa(max(int(policy.Window.Seconds()), 1)))
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests, try again later"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// limitSubject returns the counted identity for scope. Emails are hashed so counters never
// hold addresses.
func limitSubject(r *http.Request, scope LimitScope) (string, error) {
	switch scope {
	case ScopeIP:
		return clientIP(r), nil
	case ScopeAccount:
		return AccountIDFromContext(r.Context()), nil
	case ScopeEmail:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return "", err
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		var payload struct {
			Email string `json:"email"`
		}
		if json.Unmarshal(body, &payload) != nil {
			return "", nil
		}
		email := strings.ToLower(strings.TrimSpace(payload.Email))
		if email == "" {
			return "", nil
		}
		sum := sha256.Sum256([]byte(email))
		return hex.EncodeToString(sum[:]), nil
	}
	return "", nil
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
