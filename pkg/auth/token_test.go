package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/okestore/storefront-sync/pkg/config"
	"github.com/okestore/storefront-sync/pkg/enums"
)

func testJWTConfig(minutes int) config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "okestore",
		ExpirationMinutes: minutes,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig(30)
	now := time.Now().UTC()
	accountID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		AccountID: accountID,
		Email:     "seeker@example.com",
		Role:      enums.AccountRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.AccountID != accountID {
		t.Fatalf("expected account_id %s, got %s", accountID, claims.AccountID)
	}
	if claims.Email != "seeker@example.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.Role != enums.AccountRoleAdmin {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Subject != accountID.String() {
		t.Fatalf("expected subject %s, got %s", accountID, claims.Subject)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}

	exp := now.Add(cfg.TTL())
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig(10)
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		AccountID: uuid.New(),
		Role:      enums.AccountRoleCustomer,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
	other := cfg
	other.Secret = "another"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected error for a different secret")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig(15)
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{
		AccountID: uuid.New(),
		Role:      enums.AccountRoleCustomer,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMintAccessTokenRejectsBadPayload(t *testing.T) {
	cfg := testJWTConfig(5)
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{AccountID: uuid.New()}); err == nil {
		t.Fatal("expected invalid role error")
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.AccountRoleCustomer}); err == nil {
		t.Fatal("expected missing account error")
	}
}

func TestParseAccessTokenRejectsInconsistentClaims(t *testing.T) {
	cfg := testJWTConfig(5)
	now := time.Now()
	accountID := uuid.New()
	base := jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{Audience},
		Issuer:    cfg.Issuer,
		Subject:   uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}
	cases := map[string]AccessTokenClaims{
		"subject mismatch": {AccountID: accountID, Role: enums.AccountRoleCustomer, RegisteredClaims: base},
		"unknown role":     {AccountID: accountID, Role: "root", RegisteredClaims: withSubject(base, accountID)},
		"no expiry":        {AccountID: accountID, Role: enums.AccountRoleCustomer, RegisteredClaims: withoutExpiry(withSubject(base, accountID))},
		"wrong audience":   {AccountID: accountID, Role: enums.AccountRoleCustomer, RegisteredClaims: withAudience(withSubject(base, accountID), "admin-console")},
	}
	for name, claims := range cases {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
		if err != nil {
			t.Fatalf("%s: sign: %v", name, err)
		}
		if _, err := ParseAccessToken(cfg, signed); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected invalid token error, got %v", name, err)
		}
	}
}

func TestIsAdmin(t *testing.T) {
	var none *AccessTokenClaims
	if none.IsAdmin() {
		t.Fatal("nil claims are not admin")
	}
	if (&AccessTokenClaims{Role: enums.AccountRoleCustomer}).IsAdmin() {
		t.Fatal("customer is not admin")
	}
	if !(&AccessTokenClaims{Role: enums.AccountRoleAdmin}).IsAdmin() {
		t.Fatal("expected admin")
	}
}

func withSubject(c jwt.RegisteredClaims, id uuid.UUID) jwt.RegisteredClaims {
	c.Subject = id.String()
	return c
}

func withoutExpiry(c jwt.RegisteredClaims) jwt.RegisteredClaims {
	c.ExpiresAt = nil
	return c
}

func withAudience(c jwt.RegisteredClaims, aud string) jwt.RegisteredClaims {
	c.Audience = jwt.ClaimStrings{aud}
	return c
}

func TestParseAccessTokenToleratesClockSkew(t *testing.T) {
	cfg := testJWTConfig(5)
	// minted by an instance whose clock runs ahead
	token, err := MintAccessToken(cfg, time.Now().Add(10*time.Second), AccessTokenPayload{
		AccountID: uuid.New(),
		Role:      enums.AccountRoleCustomer,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err != nil {
		t.Fatalf("small skew should be accepted: %v", err)
	}
}

func TestConfigErrorsAreJoined(t *testing.T) {
	_, err := MintAccessToken(config.JWTConfig{}, time.Now(), AccessTokenPayload{})
	if err == nil {
		t.Fatal("expected config error")
	}
	for _, want := range []string{"secret", "issuer", "expiration"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}
