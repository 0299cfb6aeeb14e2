package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const (
	// CSRFCookie is the readable cookie carrying the double-submit token.
	CSRFCookie = "apigate_csrf"
	// CSRFHeader is the request header that must echo the cookie value.
	CSRFHeader = "X-CSRF-Token"
)

// csrf tokens are 32 random bytes, so 64 hex characters on the wire.
const csrfTokenLen = 64

// NewCSRFToken returns a fresh double-submit token.
func NewCSRFToken() (string, error) {
	return randomHex(csrfTokenLen / 2)
}

// EphemeralSecret returns a random signing secret for deployments that did
// not configure one. Sessions signed with it die with the process.
func EphemeralSecret() (string, error) {
	return randomHex(32)
}

// ValidCSRF reports whether the header token matches the cookie token.
// Comparison is constant time; empty or malformed tokens never match.
func ValidCSRF(cookie, header string) bool {
	if len(cookie) != csrfTokenLen || len(header) != csrfTokenLen {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) == 1
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
