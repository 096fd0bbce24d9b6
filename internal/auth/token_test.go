package auth

import (
	"testing"
	"time"
)

func testTokenService() *TokenService {
	return NewTokenService(TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := testTokenService()
	tok, err := s.SignAccessToken(7, 3, 2, "CUSTOMER")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := s.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 7 || claims.DeviceID != 3 || claims.RoleID != 2 || claims.RoleName != "CUSTOMER" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ID == "" {
		t.Fatal("missing jti")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	s := testTokenService()
	tok, err := s.SignRefreshToken(7)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := s.VerifyRefreshToken(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 7 {
		t.Fatalf("unexpected user id %d", claims.UserID)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) < 29*24*time.Hour {
		t.Fatalf("unexpected expiry %v", claims.ExpiresAt)
	}
}

func TestTokenUniqueness(t *testing.T) {
	s := testTokenService()
	a, err := s.SignRefreshToken(7)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	b, err := s.SignRefreshToken(7)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if a == b {
		t.Fatal("two refresh tokens for the same user should differ")
	}
}

func TestTokenSecretsAreSeparate(t *testing.T) {
	s := testTokenService()
	access, err := s.SignAccessToken(7, 3, 2, "CUSTOMER")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := s.VerifyRefreshToken(access); err == nil {
		t.Fatal("access token must not verify as refresh token")
	}

	other := NewTokenService(TokenConfig{AccessSecret: "different", RefreshSecret: "different", AccessTTL: time.Minute, RefreshTTL: time.Minute})
	if _, err := other.VerifyAccessToken(access); err == nil {
		t.Fatal("token signed with another secret must not verify")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	s := NewTokenService(TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     -time.Minute,
		RefreshTTL:    -time.Minute,
	})
	access, err := s.SignAccessToken(7, 3, 2, "CUSTOMER")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := s.VerifyAccessToken(access); err == nil {
		t.Fatal("expired access token must not verify")
	}
	refresh, err := s.SignRefreshToken(7)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := s.VerifyRefreshToken(refresh); err == nil {
		t.Fatal("expired refresh token must not verify")
	}
}
