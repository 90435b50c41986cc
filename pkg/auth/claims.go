package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/okestore/storefront-sync/pkg/enums"
)

// AccessTokenPayload is what the identity provider knows when a session starts.
type AccessTokenPayload struct {
	AccountID uuid.UUID
	Email     string
	Role      enums.AccountRole
	JTI       string
}

// AccessTokenClaims is the body of a storefront access token.
type AccessTokenClaims struct {
	AccountID uuid.UUID         `json:"account_id"`
	Email     string            `json:"email,omitempty"`
	Role      enums.AccountRole `json:"role"`
	jwt.RegisteredClaims
}

var _ jwt.ClaimsValidator = (*AccessTokenClaims)(nil)

// Validate runs after the registered-claim checks during parsing.
func (c *AccessTokenClaims) Validate() error {
	if c.AccountID == uuid.Nil {
		return errors.New("token carries no account id")
	}
	if c.Subject != c.AccountID.String() {
		return errors.New("token subject does not match account id")
	}
	if !c.Role.IsValid() {
		return fmt.Errorf("invalid account role %q", c.Role)
	}
	return nil
}

// IsAdmin reports whether the token grants the operator surface.
func (c *AccessTokenClaims) IsAdmin() bool {
	return c != nil && c.Role == enums.AccountRoleAdmin
}
