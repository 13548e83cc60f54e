package middleware // package middleware contains the HTTP middleware shared by all route groups

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/lakshmi-kamath/BookMySpace/internal/model"
    "github.com/lakshmi-kamath/BookMySpace/internal/utils"
)

// Context keys set by JWTAuth.
const (
    ctxPrincipal = "principal"
    ctxUserID    = "user_id"
    ctxRole      = "role"
)

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
    ID    uint64
    Role  string
    Email string
}

// IsAdmin reports whether the caller holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }

// BearerToken returns the token of an "Authorization: Bearer" header, or
// the whole header value when the scheme is omitted.
func BearerToken(c echo.Context) string {
    h := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
    if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
        return strings.TrimSpace(h[7:])
    }
    return h
}

// JWTAuth validates the bearer token and stores the Principal in the
// request context.  Downstream handlers read it with PrincipalFrom.
func JWTAuth(tokens *utils.TokenManager) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := BearerToken(c)
            if raw == "" {
                return abort(c, http.StatusUnauthorized, "unauthenticated", "Token is missing")
            }
            claims, err := tokens.Verify(raw)
            if err != nil {
                msg := "Invalid token"
                if errors.Is(err, utils.ErrTokenExpired) {
                    msg = "Token has expired"
                }
                return abort(c, http.StatusUnauthorized, "unauthenticated", msg)
            }
            SetPrincipal(c, Principal{ID: claims.UserID, Role: claims.Role, Email: claims.Email})
            return next(c)
        }
    }
}

// SetPrincipal stores p in the context.
func SetPrincipal(c echo.Context, p Principal) {
    c.Set(ctxPrincipal, p)
    c.Set(ctxUserID, p.ID)
    c.Set(ctxRole, p.Role)
}

// PrincipalFrom returns the caller stored by JWTAuth.
func PrincipalFrom(c echo.Context) (Principal, bool) {
    p, ok := c.Get(ctxPrincipal).(Principal)
    return p, ok
}

func abort(c echo.Context, status int, code, msg string) error {
    return c.JSON(status, echo.Map{"error": msg, "code": code})
}
