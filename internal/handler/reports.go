package handler

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/lakshmi-kamath/BookMySpace/internal/model"
    "github.com/lakshmi-kamath/BookMySpace/internal/repository"
)

// ReportHandler serves the read-only admin reports.
type ReportHandler struct {
    Reports ReportStore
    Log     *zap.Logger
}

func NewReportHandler(reports ReportStore, log *zap.Logger) *ReportHandler {
    if log == nil {
        log = zap.NewNop()
    }
    return &ReportHandler{Reports: reports, Log: log}
}

// filter reads from, to, venue_id, user_id and status from the query.
func filter(c echo.Context) (repository.ReportFilter, string) {
    var f repository.ReportFilter
    for _, d := range []struct {
        name string
        dst  *string
    }{{"from", &f.From}, {"to", &f.To}} {
        raw := c.QueryParam(d.name)
        if raw == "" {
            continue
        }
        if _, err := time.Parse(model.DateLayout, raw); err != nil {
            return f, "Invalid " + d.name + " date. Use YYYY-MM-DD"
        }
        *d.dst = raw
    }
    if f.From != "" && f.To != "" && f.From > f.To {
        return f, "from must not be after to"
    }
    for _, d := range []struct {
        name string
        dst  *uint64
    }{{"venue_id", &f.VenueID}, {"user_id", &f.UserID}} {
        raw := c.QueryParam(d.name)
        if raw == "" {
            continue
        }
        id, err := strconv.ParseUint(raw, 10, 64)
        if err != nil || id == 0 {
            return f, "Invalid " + d.name
        }
        *d.dst = id
    }
    switch s := c.QueryParam("status"); s {
    case "", model.BookingPending, model.BookingConfirmed, model.BookingCancelled:
        f.Status = s
    default:
        return f, "Invalid status"
    }
    return f, ""
}

// All handles GET /bookings/all.
func (h *ReportHandler) All(c echo.Context) error {
    f, msg := filter(c)
    if msg != "" {
        return badRequest(c, msg)
    }
    rows, err := h.Reports.ListAll(c.Request().Context(), f)
    if err != nil {
        return internalError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": rows, "count": len(rows)})
}

// Statistics handles GET /bookings/statistics.
func (h *ReportHandler) Statistics(c echo.Context) error {
    f, msg := filter(c)
    if msg != "" {
        return badRequest(c, msg)
    }
    st, err := h.Reports.Statistics(c.Request().Context(), f)
    if err != nil {
        return internalError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"statistics": st})
}

// Revenue handles GET /revenue.
func (h *ReportHandler) Revenue(c echo.Context) error {
    f, msg := filter(c)
    if msg != "" {
        return badRequest(c, msg)
    }
    rev, err := h.Reports.Revenue(c.Request().Context(), f)
    if err != nil {
        return internalError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, rev)
}
