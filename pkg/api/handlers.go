package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/manenim/apigate/pkg/auth"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// login checks the submitted credentials against the configured user store
// and, on success, sets the session cookie and the CSRF double-submit cookie.
func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "username and password are required",
		})
		return
	}

	want, ok := s.cfg.Auth.Users[req.Username]
	if !ok || subtle.ConstantTimeCompare([]byte(want), []byte(req.Password)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid credentials",
		})
		return
	}

	session, err := s.sessions.Issue(req.Username)
	if err != nil {
		s.log.Error("issue session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not create session",
		})
		return
	}

	csrf, err := auth.NewCSRFToken()
	if err != nil {
		s.log.Error("issue csrf token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "could not create session",
		})
		return
	}

	maxAge := int(s.sessions.TTL().Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(auth.SessionCookie, session, maxAge, "/", "", false, true)
	// The CSRF cookie stays readable so the client can echo it in the header.
	c.SetCookie(auth.CSRFCookie, csrf, maxAge, "/", "", false, false)

	c.JSON(http.StatusOK, gin.H{
		"user":       req.Username,
		"csrf_token": csrf,
	})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user": c.GetString(userContextKey),
	})
}

func (s *Server) echo(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "request body must be a JSON object",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": c.GetString(userContextKey),
		"echo": body,
	})
}

func (s *Server) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
