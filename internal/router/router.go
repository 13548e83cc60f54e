package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/lakshmi-kamath/BookMySpace/internal/config"
    "github.com/lakshmi-kamath/BookMySpace/internal/handler"
    "github.com/lakshmi-kamath/BookMySpace/internal/middleware"
    "github.com/lakshmi-kamath/BookMySpace/internal/model"
    "github.com/lakshmi-kamath/BookMySpace/internal/utils"
)

// Guards bundles the middleware shared by the route groups.
type Guards struct {
    Auth  echo.MiddlewareFunc // JWT verification
    Admin echo.MiddlewareFunc // admin role check, runs after Auth
    Limit echo.MiddlewareFunc // token bucket per user or IP
    Cache echo.MiddlewareFunc // report response cache
    Purge echo.MiddlewareFunc // drops cached reports after writes
}

// NewGuards builds the shared middleware.  A nil redis client disables
// rate limiting and caching.
func NewGuards(tokens *utils.TokenManager, rdb *redis.Client, rl config.RateLimitConfig, cc config.CacheConfig, log *zap.Logger) Guards {
    return Guards{
        Auth:  middleware.JWTAuth(tokens),
        Admin: middleware.RequireRole(model.RoleAdmin),
        Limit: middleware.NewTokenBucket(rl, rdb, log),
        Cache: middleware.NewRedisCache(cc, rdb, log),
        Purge: middleware.PurgeCache(cc, rdb, log),
    }
}

// New returns an echo instance with the request id, logging and
// validation plumbing installed.
func New(log *zap.Logger) *echo.Echo {
    e := echo.New()
    e.HideBanner = true
    e.HidePort = true
    e.Validator = handler.NewValidator()
    e.Use(middleware.RequestID())
    e.Use(middleware.RequestLogger(log))
    return e
}

// RegisterRoutes registers routes that do not require authentication
// outside the /api prefix.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
    e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers signup, login and the current user's account
// endpoints.  Signup stays public; it checks the bearer token itself when
// an admin account is requested.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, p *handler.ProfileHandler, g Guards) {
    pub := e.Group("/api", g.Limit)
    pub.POST("/signup", a.Signup, g.Purge)
    pub.POST("/login", a.Login)

    auth := e.Group("/api", g.Auth, g.Limit)
    auth.GET("/me", a.Me)
    auth.GET("/profile", p.Get)
    auth.PUT("/profile", p.Update, g.Purge)
}
