package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/lakshmi-kamath/BookMySpace/internal/model"
	"github.com/lakshmi-kamath/BookMySpace/internal/queue"
)

// AdminCancellation reports what an admin cancellation did.
type AdminCancellation struct {
	Booking       model.Booking `json:"booking"`
	PaymentStatus string        `json:"payment_status"`
	IsCancelled   bool          `json:"is_cancelled"`
	IsRefunded    bool          `json:"is_refunded"`
}

// PaymentUpdate is the state left by a payment status callback.
type PaymentUpdate struct {
	BookingID     uint64 `json:"booking_id"`
	BookingStatus string `json:"booking_status"`
	PaymentStatus string `json:"payment_status"`
}

// CancelByUser cancels a booking owned by userID.  The booking row is
// kept as cancelled and its payment, if still open, becomes cancelled.
func (s *BookingService) CancelByUser(ctx context.Context, userID, bookingID uint64) (model.Booking, error) {
	var out model.Booking
	var pay model.Payment
	err := s.inTx(ctx, func(ctx context.Context, tx BookingTx) error {
		b, p, hasPayment, err := lockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != userID {
			return forbiddenf("Unauthorized: Cannot cancel another user's booking")
		}
		if b.Status == model.BookingCancelled {
			return validationf("Booking is already cancelled")
		}
		if err := tx.SetBookingStatus(ctx, b.ID, model.BookingCancelled); err != nil {
			return internal("cancel booking", err)
		}
		b.Status = model.BookingCancelled
		if hasPayment {
			if next := closePayment(p.Status, false); next != p.Status {
				if err := tx.SetPaymentStatus(ctx, b.ID, next); err != nil {
					return internal("cancel payment", err)
				}
				p.Status = next
			}
		}
		out, pay = b, p
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	s.log.Info("booking cancelled by user", zap.Uint64("booking_id", out.ID), zap.Uint64("user_id", userID))
	s.publish(ctx, queue.EventBookingCancelled, out, pay, model.RoleUser)
	return out, nil
}

// CancelByAdmin cancels any booking that is not already cancelled and
// refunds its payment unless the payment already failed.
func (s *BookingService) CancelByAdmin(ctx context.Context, bookingID uint64) (AdminCancellation, error) {
	var res AdminCancellation
	var pay model.Payment
	err := s.inTx(ctx, func(ctx context.Context, tx BookingTx) error {
		b, p, hasPayment, err := lockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.Status == model.BookingCancelled {
			return validationf("Booking is already cancelled")
		}
		if err := tx.SetBookingStatus(ctx, b.ID, model.BookingCancelled); err != nil {
			return internal("cancel booking", err)
		}
		b.Status = model.BookingCancelled
		if hasPayment {
			if next := closePayment(p.Status, true); next != p.Status {
				if err := tx.SetPaymentStatus(ctx, b.ID, next); err != nil {
					return internal("refund payment", err)
				}
				p.Status = next
			}
		}
		res = AdminCancellation{
			Booking:       b,
			PaymentStatus: p.Status,
			IsCancelled:   true,
			IsRefunded:    hasPayment && p.Status == model.PaymentRefunded,
		}
		pay = p
		return nil
	})
	if err != nil {
		return AdminCancellation{}, err
	}
	s.log.Info("booking cancelled by admin",
		zap.Uint64("booking_id", bookingID),
		zap.Bool("refunded", res.IsRefunded),
	)
	s.publish(ctx, queue.EventBookingCancelled, res.Booking, pay, model.RoleAdmin)
	return res, nil
}

// UpdatePaymentStatus applies an external payment callback.  failed
// cancels the booking, success confirms a pending booking, every other
// combination only rewrites the payment.  A cancelled booking stays
// cancelled.
func (s *BookingService) UpdatePaymentStatus(ctx context.Context, bookingID uint64, status string) (PaymentUpdate, error) {
	if !model.CallbackPaymentStatus(status) {
		return PaymentUpdate{}, validationf("Invalid or missing status")
	}
	var b model.Booking
	var p model.Payment
	err := s.inTx(ctx, func(ctx context.Context, tx BookingTx) error {
		var hasPayment bool
		var err error
		b, p, hasPayment, err = lockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !hasPayment {
			return notFoundf("Payment not found")
		}
		if err := tx.SetPaymentStatus(ctx, b.ID, status); err != nil {
			return internal("update payment", err)
		}
		p.Status = status
		next := b.Status
		switch {
		case status == model.PaymentFailed && b.Status != model.BookingCancelled:
			next = model.BookingCancelled
		case status == model.PaymentSuccess && b.Status == model.BookingPending:
			next = model.BookingConfirmed
		}
		if next != b.Status {
			if err := tx.SetBookingStatus(ctx, b.ID, next); err != nil {
				return internal("update booking", err)
			}
			b.Status = next
		}
		return nil
	})
	if err != nil {
		return PaymentUpdate{}, err
	}
	s.publish(ctx, queue.EventPaymentStatusChanged, b, p, "")
	return PaymentUpdate{BookingID: b.ID, BookingStatus: b.Status, PaymentStatus: p.Status}, nil
}

// inTx runs fn in a detached transaction and commits when it returns nil.
func (s *BookingService) inTx(ctx context.Context, fn func(context.Context, BookingTx) error) error {
	if err := ctx.Err(); err != nil {
		return internal("request cancelled", err)
	}
	ctx, cancel := s.detach(ctx)
	defer cancel()
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return internal("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return internal("commit", err)
	}
	committed = true
	return nil
}

// lockBooking locks a booking and its payment.  A missing payment is
// reported through hasPayment, a missing booking as NotFound.
func lockBooking(ctx context.Context, tx BookingTx, bookingID uint64) (b model.Booking, p model.Payment, hasPayment bool, err error) {
	b, err = tx.BookingForUpdate(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return b, p, false, notFoundf("Booking not found")
		}
		return b, p, false, internal("load booking", err)
	}
	p, err = tx.PaymentForUpdate(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return b, p, false, nil
		}
		return b, p, false, internal("load payment", err)
	}
	return b, p, true, nil
}

// closePayment returns the terminal status a payment moves to when its
// booking is cancelled.  An admin cancellation refunds every open
// payment; a user cancellation cancels it.  Terminal payments are left
// alone.
func closePayment(current string, refund bool) string {
	switch current {
	case model.PaymentSuccess, model.PaymentPending:
		if refund {
			return model.PaymentRefunded
		}
		return model.PaymentCancelled
	}
	return current
}
