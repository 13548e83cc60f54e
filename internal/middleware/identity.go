package middleware

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userKey identifies the caller in rate-limit keys: the user id once
// JWTAuth has run, "anon" before.
func userKey(c echo.Context) string {
    if id, ok := c.Get(ctxUserID).(uint64); ok && id != 0 {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
