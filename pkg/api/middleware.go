package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manenim/apigate/pkg/auth"
	"github.com/manenim/apigate/pkg/limiter"
)

const (
	requestIDHeader = "X-Request-ID"
	userContextKey  = "user"
)

// ipNamespace groups all client-address buckets in the limiter.
const ipNamespace = "ip"

// RateLimit is the admission middleware. It resolves the caller's identity,
// charges the configured cost against that identity's bucket, and rejects
// with 429 when the bucket cannot cover it. Admitted requests continue the
// chain with no other side effect.
func (s *Server) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := s.resolver.ClientKey(c.Request)
		id := limiter.Identity{Namespace: ipNamespace, Key: key}

		dec, err := s.limiter.AllowN(c.Request.Context(), id, s.limit, s.cost)
		if err != nil {
			// The in-memory limiter never errors; a future backend might.
			// Fail open so a limiter outage does not take the API down.
			s.log.Warn("rate limiter error", zap.Error(err))
			c.Next()
			return
		}

		if !dec.Allow {
			if dec.RetryAfter > 0 {
				c.Header("Retry-After", strconv.FormatInt(int64(math.Ceil(dec.RetryAfter.Seconds())), 10))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, please try again later",
			})
			return
		}

		c.Next()
	}
}

// Authenticated requires a valid session cookie and stores its subject in the
// gin context under "user".
func (s *Server) Authenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(auth.SessionCookie)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		subject, err := s.sessions.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired session",
			})
			return
		}

		c.Set(userContextKey, subject)
		c.Next()
	}
}

// CSRF enforces the double-submit check: the X-CSRF-Token header must match
// the csrf cookie issued at login.
func (s *Server) CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(auth.CSRFCookie)
		if err != nil || !auth.ValidCSRF(cookie, c.GetHeader(auth.CSRFHeader)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "csrf token missing or invalid",
			})
			return
		}
		c.Next()
	}
}

// SecureHeaders sets the standard hardening headers on every response.
func SecureHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}

// RequestID propagates an inbound X-Request-ID or assigns a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set("request_id", id)
		c.Next()
	}
}
