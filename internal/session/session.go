package session

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

// Claims are the platform's session token claims. The client parses them
// without verifying the signature (it has no key material); the server is
// the authority, the claims only drive local view gating and expiry checks.
type Claims struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"` // "", "admin" or "superadmin"
	jwt.RegisteredClaims
}

// Parse decodes a session token's claims.
func Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, "parse session token")
	}
	return claims, nil
}

// Session is the locally known authentication state.
type Session struct {
	Token    string
	UserID   int
	Username string
	Role     string
	Expiry   time.Time
}

// FromToken builds a Session from a raw token.
func FromToken(token string) (*Session, error) {
	claims, err := Parse(token)
	if err != nil {
		return nil, err
	}
	s := &Session{
		Token:    token,
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}
	if claims.ExpiresAt != nil {
		s.Expiry = claims.ExpiresAt.Time
	}
	return s, nil
}

// Expired reports whether the token has an expiry in the past.
func (s *Session) Expired() bool {
	return !s.Expiry.IsZero() && time.Now().After(s.Expiry)
}

// IsAdmin reports back-office membership.
func (s *Session) IsAdmin() bool {
	return s.Role == "admin" || s.Role == "superadmin"
}

// IsSuperAdmin reports the elevated back-office role.
func (s *Session) IsSuperAdmin() bool {
	return s.Role == "superadmin"
}
