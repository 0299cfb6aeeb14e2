// Package api assembles the apigate HTTP surface: the rate-limit admission
// middleware in front of every route, the session and CSRF guards, and the
// handlers themselves.
package api

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/manenim/apigate/pkg/auth"
	"github.com/manenim/apigate/pkg/config"
	"github.com/manenim/apigate/pkg/identity"
	"github.com/manenim/apigate/pkg/limiter"
)

type Server struct {
	gin      *gin.Engine
	cfg      config.Config
	log      *zap.Logger
	limiter  limiter.RateLimiter
	resolver *identity.Resolver
	sessions *auth.SessionManager

	limit limiter.Limit
	cost  float64
}

func NewServer(log *zap.Logger, cfg config.Config, rl limiter.RateLimiter, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		RequestID(),
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
		SecureHeaders(),
	)

	var resolverOpts []identity.ResolverOption
	if cfg.Server.TrustProxy {
		resolverOpts = append(resolverOpts, identity.TrustProxy())
	}

	s := &Server{
		gin:      engine,
		cfg:      cfg,
		log:      log,
		limiter:  rl,
		resolver: identity.NewResolver(resolverOpts...),
		sessions: auth.NewSessionManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTLOrDefault()),
		limit: limiter.Limit{
			Rate:   cfg.RateLimit.Rate,
			Period: time.Second,
			Burst:  cfg.RateLimit.Burst,
		},
		cost: cfg.RateLimit.Cost,
	}

	// Liveness and metrics stay outside the admission middleware so probes
	// and scrapes never compete with clients for tokens.
	engine.GET("/healthz", s.healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limited := engine.Group("/", s.RateLimit())
	limited.GET("/ping", s.ping)
	limited.POST("/login", s.login)

	protected := limited.Group("/api", s.Authenticated())
	protected.GET("/me", s.me)
	protected.POST("/echo", s.CSRF(), s.echo)

	return s
}

// Handler exposes the assembled engine, mainly for httptest and custom
// http.Server wiring.
func (s *Server) Handler() http.Handler {
	return s.gin
}
