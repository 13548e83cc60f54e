package model

import "time"

// Booking statuses.  cancelled is terminal.
const (
    BookingPending   = "pending"
    BookingConfirmed = "confirmed"
    BookingCancelled = "cancelled"
)

// DateLayout and ClockLayout are the wire formats of booking_date and
// start_time/end_time.
const (
    DateLayout  = "2006-01-02"
    ClockLayout = "15:04"
)

// Booking records a user's reservation of a venue for a half-open time
// interval [StartTime, EndTime) on BookingDate.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who made the booking.
//  VenueID     – venue being reserved.
//  BookingDate – calendar date, YYYY-MM-DD.
//  StartTime   – HH:MM, inclusive.
//  EndTime     – HH:MM, exclusive.
//  Status      – pending, confirmed or cancelled.
//  CreatedAt   – creation timestamp.
type Booking struct {
    ID          uint64    `json:"id"`           // bookings.id
    UserID      uint64    `json:"user_id"`      // bookings.user_id
    VenueID     uint64    `json:"venue_id"`     // bookings.venue_id
    BookingDate string    `json:"booking_date"` // bookings.booking_date
    StartTime   string    `json:"start_time"`   // bookings.start_time
    EndTime     string    `json:"end_time"`     // bookings.end_time
    Status      string    `json:"status"`       // bookings.status
    CreatedAt   time.Time `json:"created_at"`   // bookings.created_at
}

// BookingDetail is a booking joined with its venue and payment, as
// returned by the listing and reporting endpoints.
type BookingDetail struct {
    Booking
    VenueName     string   `json:"venue_name"`
    Location      string   `json:"location"`
    Price         float64  `json:"price"`
    UserName      string   `json:"user_name,omitempty"`
    UserEmail     string   `json:"user_email,omitempty"`
    PaymentStatus *string  `json:"payment_status"`
    Amount        *float64 `json:"amount,omitempty"`
}
