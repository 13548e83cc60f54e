// Package queue carries booking lifecycle events over RabbitMQ: the event
// payload, an asynchronous publisher and the consumer that appends every
// event to the booking log.
package queue

import (
    "time"

    "github.com/google/uuid"
)

// BookingEventsQueue is the durable queue all booking events go to.
const BookingEventsQueue = "booking.events"

// Event types published on the booking events queue.
const (
    EventBookingConfirmed     = "booking.confirmed"
    EventBookingPaymentFailed = "booking.payment_failed"
    EventBookingCancelled     = "booking.cancelled"
    EventPaymentStatusChanged = "payment.status_changed"
)

// BookingEvent is published after a booking or payment transaction
// commits.  It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.
type BookingEvent struct {
    ID            string  `json:"id"`
    Type          string  `json:"type"`
    BookingID     uint64  `json:"booking_id"`
    UserID        uint64  `json:"user_id"`
    VenueID       uint64  `json:"venue_id"`
    BookingDate   string  `json:"booking_date"`
    StartTime     string  `json:"start_time"`
    EndTime       string  `json:"end_time"`
    BookingStatus string  `json:"booking_status"`
    PaymentStatus string  `json:"payment_status"`
    Amount        float64 `json:"amount"`
    CancelledBy   string  `json:"cancelled_by,omitempty"`
    OccurredAt    string  `json:"occurred_at"`
}

// NewBookingEvent stamps an event with a fresh id and the current UTC time.
func NewBookingEvent(typ string) BookingEvent {
    return BookingEvent{
        ID:         uuid.NewString(),
        Type:       typ,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
}
