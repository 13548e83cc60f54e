package router

import (
    "github.com/labstack/echo/v4"

    "github.com/lakshmi-kamath/BookMySpace/internal/handler"
)

// AdminHandlers groups the handlers mounted behind the admin role.
type AdminHandlers struct {
    Users    *handler.UsersHandler
    Venues   *handler.VenueHandler
    Reports  *handler.ReportHandler
    Bookings *handler.BookingHandler
}

// RegisterAdmin registers admin-scoped endpoints under /api.  All routes
// require a valid JWT and the admin role.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, g Guards) {
    grp := e.Group("/api", g.Auth, g.Admin, g.Limit)

    // ---- Users ----
    grp.GET("/users", h.Users.List)
    grp.DELETE("/users/:id", h.Users.Delete, g.Purge)
    grp.PUT("/users/:id/role", h.Users.UpdateRole, g.Purge)

    // ---- Venues ----
    grp.GET("/venues", h.Venues.List)
    grp.GET("/venues/:id", h.Venues.Get)
    grp.POST("/venues", h.Venues.Create, g.Purge)
    grp.PUT("/venues/:id", h.Venues.Update, g.Purge)
    grp.DELETE("/venues/:id", h.Venues.Delete, g.Purge)

    // ---- Bookings and payments ----
    grp.DELETE("/admin/bookings/:id", h.Bookings.AdminCancel, g.Purge)
    grp.PUT("/payments/:booking_id/status", h.Bookings.PaymentStatus, g.Purge)

    // ---- Reports (cached) ----
    grp.GET("/bookings/all", h.Reports.All, g.Cache)
    grp.GET("/bookings/statistics", h.Reports.Statistics, g.Cache)
    grp.GET("/revenue", h.Reports.Revenue, g.Cache)
}
