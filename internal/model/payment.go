package model

import "time"

// Payment statuses.  failed, refunded and cancelled are terminal for the
// normal flows; only the external status callback rewrites them.
const (
    PaymentPending   = "pending"
    PaymentSuccess   = "success"
    PaymentFailed    = "failed"
    PaymentRefunded  = "refunded"
    PaymentCancelled = "cancelled"
)

// Payment is the one-to-one accounting record of a Booking.  It is
// created together with the booking and removed with it.
type Payment struct {
    ID        uint64    `json:"id"`         // payments.id
    BookingID uint64    `json:"booking_id"` // payments.booking_id
    Amount    float64   `json:"amount"`     // payments.amount
    Status    string    `json:"status"`     // payments.status
    CreatedAt time.Time `json:"created_at"` // payments.created_at
}

// CallbackPaymentStatus reports whether s may be set through the
// external payment status callback.
func CallbackPaymentStatus(s string) bool {
    switch s {
    case PaymentSuccess, PaymentFailed, PaymentRefunded, PaymentPending:
        return true
    }
    return false
}
