package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/lakshmi-kamath/BookMySpace/internal/middleware"
    "github.com/lakshmi-kamath/BookMySpace/internal/service"
)

// Error codes returned next to the message in every error body.
const (
    codeValidation      = "validation_error"
    codeUnauthenticated = "unauthenticated"
    codeForbidden       = "forbidden"
    codeNotFound        = "not_found"
    codeConflict        = "conflict"
    codeInternal        = "internal_fault"
    codePaymentFailed   = "payment_failed"
)

func errorJSON(c echo.Context, status int, code, msg string) error {
    return c.JSON(status, echo.Map{"error": msg, "code": code})
}

func badRequest(c echo.Context, msg string) error {
    return errorJSON(c, http.StatusBadRequest, codeValidation, msg)
}

// fail maps a service error to its HTTP status.  Internal faults are
// logged with the request id and answered with a generic message.
func fail(c echo.Context, log *zap.Logger, err error) error {
    var se *service.Error
    msg := err.Error()
    if errors.As(err, &se) {
        msg = se.Msg
    }
    switch kind := service.KindOf(err); kind {
    case service.ErrValidation:
        return errorJSON(c, http.StatusBadRequest, codeValidation, msg)
    case service.ErrUnauthenticated:
        return errorJSON(c, http.StatusUnauthorized, codeUnauthenticated, msg)
    case service.ErrForbidden:
        return errorJSON(c, http.StatusForbidden, codeForbidden, msg)
    case service.ErrNotFound:
        return errorJSON(c, http.StatusNotFound, codeNotFound, msg)
    case service.ErrConflict:
        body := echo.Map{"error": msg, "code": codeConflict}
        if se != nil && se.Existing != nil {
            body["existing"] = se.Existing.String()
        }
        return c.JSON(http.StatusConflict, body)
    default:
        return internalError(c, log, err)
    }
}

func internalError(c echo.Context, log *zap.Logger, err error) error {
    log.Error("request failed",
        zap.String("request_id", middleware.GetRequestID(c)),
        zap.String("route", c.Path()),
        zap.Error(err),
    )
    return errorJSON(c, http.StatusInternalServerError, codeInternal, "Internal server error")
}

// principal returns the caller set by the JWT middleware.  Routes that
// call it are always mounted behind JWTAuth.
func principal(c echo.Context) middleware.Principal {
    p, _ := middleware.PrincipalFrom(c)
    return p
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}
