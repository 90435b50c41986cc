package middleware

import "context"

type callerKey struct{}

// Caller is the identity carried by a verified access token.
type Caller struct {
	AccountID string
	Role      string
	Email     string
}

// CallerFromContext returns the caller attached by Auth, if any.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	if ctx == nil {
		return Caller{}, false
	}
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}

func withCaller(ctx context.Context, c Caller) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, callerKey{}, c)
}

func AccountIDFromContext(ctx context.Context) string {
	c, _ := CallerFromContext(ctx)
	return c.AccountID
}

func RoleFromContext(ctx context.Context) string {
	c, _ := CallerFromContext(ctx)
	return c.Role
}

func EmailFromContext(ctx context.Context) string {
	c, _ := CallerFromContext(ctx)
	return c.Email
}

// WithAccount sets the account and role, keeping any email already present.
func WithAccount(ctx context.Context, accountID, role string) context.Context {
	c, _ := CallerFromContext(ctx)
	c.AccountID = accountID
	c.Role = role
	return withCaller(ctx, c)
}

// WithEmail sets the caller email, keeping the account already present.
func WithEmail(ctx context.Context, email string) context.Context {
	c, _ := CallerFromContext(ctx)
	c.Email = email
	return withCaller(ctx, c)
}
