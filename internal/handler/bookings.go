package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/lakshmi-kamath/BookMySpace/internal/service"
)

// BookingHandler exposes the booking engine and lifecycle operations.
type BookingHandler struct {
    Bookings *service.BookingService
    Log      *zap.Logger
}

func NewBookingHandler(bookings *service.BookingService, log *zap.Logger) *BookingHandler {
    if bookings == nil {
        panic("nil dependency passed to NewBookingHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &BookingHandler{Bookings: bookings, Log: log}
}

// createBookingReq keeps dates and times as strings until the service
// validates them.
type createBookingReq struct {
    UserID      uint64 `json:"user_id"`
    VenueID     uint64 `json:"venue_id"`
    BookingDate string `json:"booking_date"`
    StartTime   string `json:"start_time"`
    EndTime     string `json:"end_time"`
}

type paymentStatusReq struct {
    Status string `json:"status"`
}

// Create handles POST /bookings.  user_id defaults to the caller; only
// admins may book on behalf of someone else.
func (h *BookingHandler) Create(c echo.Context) error {
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "Invalid request body")
    }
    p := principal(c)
    if req.UserID == 0 {
        req.UserID = p.ID
    }
    if req.UserID != p.ID && !p.IsAdmin() {
        return errorJSON(c, http.StatusForbidden, codeForbidden, "Cannot create a booking for another user")
    }

    res, err := h.Bookings.CreateBooking(c.Request().Context(), service.CreateBookingInput{
        UserID:      req.UserID,
        VenueID:     req.VenueID,
        BookingDate: req.BookingDate,
        StartTime:   req.StartTime,
        EndTime:     req.EndTime,
    })
    if err != nil {
        return fail(c, h.Log, err)
    }
    if res.Outcome == service.OutcomePaymentFailed {
        return c.JSON(http.StatusBadRequest, echo.Map{
            "error":   "Payment failed, booking cancelled",
            "code":    codePaymentFailed,
            "booking": res.Booking,
            "payment": res.Payment,
        })
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "message": "Booking and payment processed successfully",
        "booking": res.Booking,
        "payment": res.Payment,
    })
}

// List handles GET /bookings.  Admins may read another user's bookings
// with ?user_id=.
func (h *BookingHandler) List(c echo.Context) error {
    p := principal(c)
    userID := p.ID
    if raw := c.QueryParam("user_id"); raw != "" {
        id, err := strconv.ParseUint(raw, 10, 64)
        if err != nil || id == 0 {
            return badRequest(c, "Invalid user_id")
        }
        if id != p.ID && !p.IsAdmin() {
            return errorJSON(c, http.StatusForbidden, codeForbidden, "Cannot view another user's bookings")
        }
        userID = id
    }
    bookings, err := h.Bookings.ListUserBookings(c.Request().Context(), userID)
    if err != nil {
        return fail(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// Cancel handles DELETE /bookings/:id for the booking's owner.
func (h *BookingHandler) Cancel(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid booking id")
    }
    b, err := h.Bookings.CancelByUser(c.Request().Context(), principal(c).ID, id)
    if err != nil {
        return fail(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Booking cancelled successfully", "booking": b})
}

// AdminCancel handles DELETE /admin/bookings/:id.  A settled payment is
// refunded.
func (h *BookingHandler) AdminCancel(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid booking id")
    }
    res, err := h.Bookings.CancelByAdmin(c.Request().Context(), id)
    if err != nil {
        return fail(c, h.Log, err)
    }
    msg := "Booking cancelled"
    if res.IsRefunded {
        msg = "Booking cancelled and payment refunded"
    }
    return c.JSON(http.StatusOK, echo.Map{
        "message":        msg,
        "booking":        res.Booking,
        "payment_status": res.PaymentStatus,
        "is_cancelled":   res.IsCancelled,
        "is_refunded":    res.IsRefunded,
    })
}

// PaymentStatus handles PUT /payments/:booking_id/status, the external
// payment callback.
func (h *BookingHandler) PaymentStatus(c echo.Context) error {
    id, ok := parseID(c, "booking_id")
    if !ok {
        return badRequest(c, "Invalid booking id")
    }
    var req paymentStatusReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "Invalid request body")
    }
    res, err := h.Bookings.UpdatePaymentStatus(c.Request().Context(), id, req.Status)
    if err != nil {
        return fail(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Payment status updated", "payment": res})
}
