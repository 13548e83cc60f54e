package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/lakshmi-kamath/BookMySpace/internal/model"
)

// RequireRole lets the request through only when the authenticated role
// is one of roles.  It must run after JWTAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    msg := "Forbidden"
    if len(roles) == 1 && roles[0] == model.RoleAdmin {
        msg = "Admin access required"
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            p, ok := PrincipalFrom(c)
            if !ok {
                return abort(c, http.StatusUnauthorized, "unauthenticated", "Token is missing")
            }
            if !allowed[p.Role] {
                return abort(c, http.StatusForbidden, "forbidden", msg)
            }
            return next(c)
        }
    }
}
