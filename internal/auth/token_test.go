package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret")

	token, err := m.Generate("01ARZ3NDEKTSV4RRFFQ69G5FAV", "a@x.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Errorf("UserID = %q", claims.UserID)
	}
	if claims.Email != "a@x.com" {
		t.Errorf("Email = %q", claims.Email)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := NewTokenManager("secret-one")
	verifier := NewTokenManager("secret-two")

	token, err := signer.Generate("uid", "a@x.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected verification failure for wrong secret")
	}
}

func TestVerifyRejectsMalformedTokens(t *testing.T) {
	m := NewTokenManager("test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
		{"wrong segment count", "a.b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Verify(tt.token); err == nil {
				t.Errorf("Verify(%q) succeeded, want error", tt.token)
			}
		})
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret")
	m.ttl = -time.Hour

	token, err := m.Generate("uid", "a@x.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := m.Verify(token); err == nil {
		t.Fatal("expected verification failure for expired token")
	}
}

func TestDegradedModeStillRoundTrips(t *testing.T) {
	m := NewTokenManager("")

	if !m.Insecure() {
		t.Fatal("empty secret should put the manager in insecure mode")
	}

	token, err := m.Generate("uid", "a@x.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify in degraded mode: %v", err)
	}
	if claims.Email != "a@x.com" {
		t.Errorf("Email = %q", claims.Email)
	}
}

func TestConfiguredSecretIsNotInsecure(t *testing.T) {
	if NewTokenManager("real-secret").Insecure() {
		t.Fatal("configured secret reported insecure")
	}
}
