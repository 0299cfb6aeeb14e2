// Package auth implements the session and CSRF token plumbing for apigate.
//
// Sessions are stateless HS256 JWTs carried in an HttpOnly cookie. CSRF uses
// the double-submit pattern: a random hex token is issued in a readable
// cookie at login and must be echoed back in a request header on mutating
// calls.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "apigate_session"

const issuer = "apigate"

var ErrInvalidSession = errors.New("invalid session token")

// SessionManager mints and verifies session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the configured session lifetime.
func (s *SessionManager) TTL() time.Duration {
	return s.ttl
}

// Issue mints a signed session token for the given subject.
func (s *SessionManager) Issue(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token, returning its subject. All
// failure modes collapse into ErrInvalidSession; callers have no reason to
// distinguish a bad signature from an expired claim.
func (s *SessionManager) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", ErrInvalidSession
	}
	if claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}
