package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/lakshmi-kamath/BookMySpace/internal/config"
    "github.com/lakshmi-kamath/BookMySpace/internal/utils"
)

func newProtected(tm *utils.TokenManager, roles ...string) *echo.Echo {
    e := echo.New()
    g := e.Group("/api", JWTAuth(tm))
    if len(roles) > 0 {
        g.Use(RequireRole(roles...))
    }
    g.GET("/whoami", func(c echo.Context) error {
        p, _ := PrincipalFrom(c)
        return c.JSON(http.StatusOK, echo.Map{"id": p.ID, "role": p.Role, "email": p.Email})
    })
    return e
}

func do(e *echo.Echo, auth string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
    if auth != "" {
        req.Header.Set(echo.HeaderAuthorization, auth)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestJWTAuth(t *testing.T) {
    tm := utils.NewTokenManager("secret", time.Hour)
    e := newProtected(tm)
    tok, err := tm.Issue(5, "asha@example.com", "user")
    require.NoError(t, err)

    rec := do(e, "Bearer "+tok.Token)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"id":5,"role":"user","email":"asha@example.com"}`, rec.Body.String())

    rec = do(e, tok.Token)
    assert.Equal(t, http.StatusOK, rec.Code, "scheme may be omitted")

    rec = do(e, "")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.JSONEq(t, `{"error":"Token is missing","code":"unauthenticated"}`, rec.Body.String())

    rec = do(e, "Bearer garbage")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Contains(t, rec.Body.String(), "Invalid token")
}

func TestJWTAuth_Expired(t *testing.T) {
    past := time.Now().Add(-48 * time.Hour)
    old := utils.NewTokenManager("secret", time.Hour).WithClock(func() time.Time { return past })
    tok, err := old.Issue(5, "a@b.c", "user")
    require.NoError(t, err)

    rec := do(newProtected(utils.NewTokenManager("secret", time.Hour)), "Bearer "+tok.Token)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Contains(t, rec.Body.String(), "Token has expired")
}

func TestRequireRole(t *testing.T) {
    tm := utils.NewTokenManager("secret", time.Hour)
    e := newProtected(tm, "admin")

    user, _ := tm.Issue(1, "u@x.io", "user")
    rec := do(e, "Bearer "+user.Token)
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.JSONEq(t, `{"error":"Admin access required","code":"forbidden"}`, rec.Body.String())

    admin, _ := tm.Issue(2, "a@x.io", "admin")
    rec = do(e, "Bearer "+admin.Token)
    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestID(t *testing.T) {
    e := echo.New()
    e.Use(RequestID())
    e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, GetRequestID(c)) })

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
    id := rec.Header().Get(echo.HeaderXRequestID)
    assert.Len(t, id, 36)
    assert.Equal(t, id, rec.Body.String())

    req := httptest.NewRequest(http.MethodGet, "/", nil)
    req.Header.Set(echo.HeaderXRequestID, "abc")
    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, "abc", rec.Body.String())
}

func TestPayloadRoundTrip(t *testing.T) {
    hdr := http.Header{"Content-Type": {"application/json"}}
    bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"total_bookings":3}`))
    require.NoError(t, err)

    status, got, body, ok := decodePayload(bs)
    require.True(t, ok)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, "application/json", got.Get("Content-Type"))
    assert.Equal(t, `{"total_bookings":3}`, string(body))

    _, _, _, ok = decodePayload(bs[:5])
    assert.False(t, ok)
}

func TestBuildKeys(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/api/revenue?to=2026-10-31&from=2026-10-01", nil)
    req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/api/revenue")

    rl := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
    assert.Equal(t, "rl:ip:10.0.0.9:user:anon:route:GET /api/revenue", buildRateKey(rl, c))
    SetPrincipal(c, Principal{ID: 12, Role: "admin"})
    assert.Equal(t, "rl:ip:10.0.0.9:user:12:route:GET /api/revenue", buildRateKey(rl, c))
    rl.KeyStrategy = "ip"
    assert.Equal(t, "rl:ip:10.0.0.9", buildRateKey(rl, c))

    cc := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
    k1 := cacheKeyFrom(cc, c)
    req2 := httptest.NewRequest(http.MethodGet, "/api/revenue?from=2026-10-01&to=2026-10-31", nil)
    c2 := e.NewContext(req2, httptest.NewRecorder())
    c2.SetPath("/api/revenue")
    assert.Equal(t, k1, cacheKeyFrom(cc, c2), "query order must not matter")
    assert.Regexp(t, `^cache:[0-9a-f]{40}$`, k1)
}

func TestDisabledWithoutRedis(t *testing.T) {
    e := echo.New()
    e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil))
    e.Use(NewRedisCache(config.CacheConfig{Enabled: true}, nil, nil))
    e.Use(PurgeCache(config.CacheConfig{Enabled: true}, nil, nil))
    e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
    assert.Equal(t, http.StatusNoContent, rec.Code)
    assert.Empty(t, rec.Header().Get("X-Cache"))
}
