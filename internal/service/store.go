package service

import (
	"context"

	"github.com/lakshmi-kamath/BookMySpace/internal/model"
	"github.com/lakshmi-kamath/BookMySpace/internal/queue"
)

// Missing rows are reported by stores as sql.ErrNoRows so that MySQL and
// in-memory implementations behave the same.

// BookingStore is the persistence gateway used by the booking core.
type BookingStore interface {
	// BeginTx opens a transaction.  The caller must Commit or Rollback.
	BeginTx(ctx context.Context) (BookingTx, error)
	// ListByUser returns the user's bookings joined with venue and payment.
	ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
}

// BookingTx is one atomic unit against the store.
type BookingTx interface {
	SlotReader

	// LockSlot serializes every transaction that targets the same venue
	// and date until commit or rollback.
	LockSlot(ctx context.Context, venueID uint64, date string) error
	GetVenue(ctx context.Context, venueID uint64) (model.Venue, error)
	UserExists(ctx context.Context, userID uint64) (bool, error)

	InsertBooking(ctx context.Context, b *model.Booking) error
	InsertPayment(ctx context.Context, p *model.Payment) error
	// BookingForUpdate and PaymentForUpdate lock the row they return.
	BookingForUpdate(ctx context.Context, bookingID uint64) (model.Booking, error)
	PaymentForUpdate(ctx context.Context, bookingID uint64) (model.Payment, error)
	SetBookingStatus(ctx context.Context, bookingID uint64, status string) error
	SetPaymentStatus(ctx context.Context, bookingID uint64, status string) error

	Commit() error
	Rollback() error
}

// UserStore is the persistence gateway used by AccountService.
type UserStore interface {
	BeginUserTx(ctx context.Context) (UserTx, error)
}

// UserTx locks user rows while the admin invariant is checked.
type UserTx interface {
	UserForUpdate(ctx context.Context, id uint64) (model.User, error)
	// CountAdmins counts admin users, locking their rows.
	CountAdmins(ctx context.Context) (int, error)
	DeleteUser(ctx context.Context, id uint64) error
	SetRole(ctx context.Context, id uint64, role string) error
	Commit() error
	Rollback() error
}

// EventPublisher receives booking lifecycle events after commit.
// Publishing failures never affect the committed outcome.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}
