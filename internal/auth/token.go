package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// devFallbackSecret signs cookies when AUTH_SECRET is unset. It provides no
// integrity guarantee; the server logs a warning and reports insecure_cookies
// whenever it is in use.
const devFallbackSecret = "dev-insecure-secret"

// DefaultTokenTTL is how long a session cookie stays valid
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims represents the session token claims
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies session cookie tokens
type TokenManager struct {
	secret   []byte
	insecure bool
	ttl      time.Duration
}

// NewTokenManager creates a token manager for the given secret. An empty
// secret puts the manager in degraded insecure mode: tokens are signed and
// verified with a fixed development secret so cookies still round-trip.
func NewTokenManager(secret string) *TokenManager {
	if secret == "" {
		return &TokenManager{secret: []byte(devFallbackSecret), insecure: true, ttl: DefaultTokenTTL}
	}
	return &TokenManager{secret: []byte(secret), ttl: DefaultTokenTTL}
}

// Insecure reports whether the manager runs on the fallback secret
func (m *TokenManager) Insecure() bool {
	return m.insecure
}

// TTL returns the token lifetime
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Generate creates a new signed session token for a user
func (m *TokenManager) Generate(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify validates a session token and returns the claims
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
