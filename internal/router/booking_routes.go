package router

import (
    "github.com/labstack/echo/v4"

    "github.com/lakshmi-kamath/BookMySpace/internal/handler"
)

// RegisterBookings registers the endpoints any authenticated user may
// call.  Ownership is checked in the handlers.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, g Guards) {
    grp := e.Group("/api", g.Auth, g.Limit)
    grp.GET("/bookings", b.List)
    grp.POST("/bookings", b.Create, g.Purge)
    grp.DELETE("/bookings/:id", b.Cancel, g.Purge)
}
