package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/yulishop/storefront/pkg/config"
	"github.com/yulishop/storefront/pkg/enums"
)

func testJWTConfig(minutes int) config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "yulishop", ExpirationMinutes: minutes}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig(30)
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{Subject: "cust-1", Email: "anna@example.de", Role: enums.AuthRoleUser})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, "Bearer "+token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.Subject != "cust-1" {
		t.Fatalf("expected subject cust-1, got %s", claims.Subject)
	}
	if claims.Role != enums.AuthRoleUser {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}

	exp := now.Add(30 * time.Minute)
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
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Subject: "cust-1", Role: enums.AuthRoleAdmin})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
	other := cfg
	other.Secret = "other"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected wrong secret to fail")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig(15)
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{Subject: "cust-1", Role: enums.AuthRoleUser})
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

func TestInspectAccessTokenReadsExpiryWithoutSecret(t *testing.T) {
	cfg := testJWTConfig(15)
	now := time.Now()

	fresh, err := MintAccessToken(cfg, now, AccessTokenPayload{Subject: "cust-1", Role: enums.AuthRoleUser})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := InspectAccessToken(fresh)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if Expired(claims, now) {
		t.Fatal("fresh token should not be expired")
	}
	if !Expired(claims, now.Add(16*time.Minute)) {
		t.Fatal("token should be expired after its ttl")
	}

	if _, err := InspectAccessToken("not-a-jwt"); err == nil {
		t.Fatal("expected malformed token to fail")
	}
	if !Expired(nil, now) {
		t.Fatal("nil claims count as expired")
	}
}

func TestMintAccessTokenValidatesPayload(t *testing.T) {
	cfg := testJWTConfig(5)
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Subject: "cust-1"}); err == nil {
		t.Fatal("expected invalid role error")
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.AuthRoleUser}); err == nil {
		t.Fatal("expected missing subject error")
	}
	if _, err := MintAccessToken(config.JWTConfig{Issuer: "x", ExpirationMinutes: 5}, time.Now(), AccessTokenPayload{Subject: "a", Role: enums.AuthRoleUser}); err == nil {
		t.Fatal("expected missing secret error")
	}
}

func TestStripBearer(t *testing.T) {
	if got := StripBearer("  bearer abc "); got != "abc" {
		t.Fatalf("unexpected %q", got)
	}
	if got := StripBearer("abc"); got != "abc" {
		t.Fatalf("unexpected %q", got)
	}
}
