package auth

import (
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/crusade-dev/crusaded/internal/models"
)

// CookieName is the session cookie holding the signed auth token
const CookieName = "campaign_auth"

// Session represents the resolved identity for one request. A zero Session
// is a valid anonymous session.
type Session struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	IsAdmin       bool   `json:"is_admin"`
}

// Resolver turns a raw session cookie into a Session. Resolution never
// fails: malformed, unverifiable, expired tokens and unknown users all
// degrade to an anonymous session.
type Resolver struct {
	db     *gorm.DB
	tokens *TokenManager
	admins AllowList
	logger zerolog.Logger
}

// NewResolver creates a session resolver
func NewResolver(db *gorm.DB, tokens *TokenManager, admins AllowList, logger zerolog.Logger) *Resolver {
	return &Resolver{db: db, tokens: tokens, admins: admins, logger: logger}
}

// Resolve produces the Session for a raw cookie value. An empty rawCookie
// means no cookie was sent.
func (r *Resolver) Resolve(rawCookie string) Session {
	if rawCookie == "" {
		return Session{}
	}

	claims, err := r.tokens.Verify(rawCookie)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Session cookie rejected")
		return Session{}
	}

	// The token is only trusted as far as the database row it points at:
	// both id and email must still match.
	var user models.User
	if err := r.db.Where("id = ? AND email = ?", claims.UserID, claims.Email).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			r.logger.Error().Err(err).Str("user_id", claims.UserID).Msg("Session user lookup failed")
		}
		return Session{}
	}

	return Session{
		Authenticated: true,
		UserID:        user.ID,
		Email:         user.Email,
		Name:          user.Name,
		IsAdmin:       r.admins.Contains(user.Email),
	}
}

// IsAdmin reports whether the session's user is on the admin allow-list.
// Always false for anonymous sessions.
func (r *Resolver) IsAdmin(s Session) bool {
	if !s.Authenticated {
		return false
	}
	return r.admins.Contains(s.Email)
}
