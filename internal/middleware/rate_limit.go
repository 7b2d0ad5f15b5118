package middleware

import (
	"math"
	"time"

	"github.com/deppfellow/go-todo/internal/errs"
	"github.com/deppfellow/go-todo/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// rateLimitExpiry is how long an idle client's limiter is kept in memory.
const rateLimitExpiry = 3 * time.Minute

type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Limit enforces Server.RateLimitRPS per client ip on the API routes.
// A zero rate disables limiting. System routes are never limited.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	rps := r.server.Config.Server.RateLimitRPS
	if rps <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     int(math.Ceil(rps)),
		ExpiresIn: rateLimitExpiry,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: isSystemRoute,
		Store:   store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			GetLogger(c).Warn().
				Str("client", identifier).
				Msg("rate limit exceeded")
			return errs.NewTooManyRequestsError("Rate limit exceeded")
		},
	})
}

// RecordRateLimitHit counts a rejected request in Prometheus and New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.Metrics != nil {
		r.server.Metrics.RecordRateLimited(endpoint)
	}

	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}

func isSystemRoute(c echo.Context) bool {
	switch c.Path() {
	case "/health", "/status", "/metrics", "/docs":
		return true
	}
	return false
}
