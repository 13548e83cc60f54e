package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lakshmi-kamath/BookMySpace/internal/model"
	"github.com/lakshmi-kamath/BookMySpace/internal/queue"
)

// CreateBookingInput is a reservation request as received from a caller.
// Dates and times are kept in their wire format until validation.
type CreateBookingInput struct {
	UserID      uint64
	VenueID     uint64
	BookingDate string
	StartTime   string
	EndTime     string
}

// Outcome tells a successful booking apart from a declined payment.  Both
// leave the store consistent; only unexpected faults are errors.
type Outcome string

const (
	OutcomeConfirmed     Outcome = "confirmed"
	OutcomePaymentFailed Outcome = "payment_failed"
)

// BookingResult is the committed state of a booking attempt.
type BookingResult struct {
	Outcome Outcome
	Booking model.Booking
	Payment model.Payment
}

// BookingService is the booking transaction engine and lifecycle manager.
// It holds no booking state between calls; every operation runs in its
// own store transaction.
type BookingService struct {
	store    BookingStore
	payments PaymentProcessor
	events   EventPublisher
	slots    SlotChecker
	log      *zap.Logger

	now            func() time.Time
	loc            *time.Location
	paymentTimeout time.Duration
	txTimeout      time.Duration
}

// Option customises a BookingService.
type Option func(*BookingService)

// WithEvents publishes committed lifecycle changes to p.
func WithEvents(p EventPublisher) Option { return func(s *BookingService) { s.events = p } }

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option { return func(s *BookingService) { s.log = l } }

// WithClock replaces time.Now, used to decide which dates are in the future.
func WithClock(now func() time.Time) Option { return func(s *BookingService) { s.now = now } }

// WithLocation sets the calendar in which "today" is evaluated.
func WithLocation(loc *time.Location) Option { return func(s *BookingService) { s.loc = loc } }

// WithPaymentTimeout bounds a single payment attempt.
func WithPaymentTimeout(d time.Duration) Option {
	return func(s *BookingService) { s.paymentTimeout = d }
}

// WithTxTimeout bounds a whole transaction once it has begun.
func WithTxTimeout(d time.Duration) Option { return func(s *BookingService) { s.txTimeout = d } }

// NewBookingService wires the engine.  store and payments are required.
func NewBookingService(store BookingStore, payments PaymentProcessor, opts ...Option) *BookingService {
	if store == nil || payments == nil {
		panic("nil dependency passed to NewBookingService")
	}
	s := &BookingService{
		store:          store,
		payments:       payments,
		log:            zap.NewNop(),
		now:            time.Now,
		loc:            time.UTC,
		paymentTimeout: 5 * time.Second,
		txTimeout:      15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking validates the request, then in one transaction locks the
// venue/date slot, checks for overlaps, verifies venue and user, writes
// the pending booking and payment, charges the venue price and settles
// both rows.  A declined payment commits the booking as cancelled with a
// failed payment and is reported through the result, not as an error.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (BookingResult, error) {
	want, err := s.validate(in)
	if err != nil {
		return BookingResult{}, err
	}

	if err := ctx.Err(); err != nil {
		return BookingResult{}, internal("request cancelled", err)
	}
	ctx, cancel := s.detach(ctx)
	defer cancel()
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return BookingResult{}, internal("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := tx.LockSlot(ctx, in.VenueID, in.BookingDate); err != nil {
		return BookingResult{}, internal("lock slot", err)
	}
	if err := s.slots.Check(ctx, tx, in.VenueID, in.BookingDate, want); err != nil {
		return BookingResult{}, err
	}
	venue, err := tx.GetVenue(ctx, in.VenueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BookingResult{}, notFoundf("Venue not found")
		}
		return BookingResult{}, internal("load venue", err)
	}
	ok, err := tx.UserExists(ctx, in.UserID)
	if err != nil {
		return BookingResult{}, internal("load user", err)
	}
	if !ok {
		return BookingResult{}, notFoundf("User not found")
	}

	b := model.Booking{
		UserID:      in.UserID,
		VenueID:     in.VenueID,
		BookingDate: in.BookingDate,
		StartTime:   want.Start.String(),
		EndTime:     want.End.String(),
		Status:      model.BookingPending,
	}
	if err := tx.InsertBooking(ctx, &b); err != nil {
		return BookingResult{}, internal("create booking", err)
	}
	p := model.Payment{BookingID: b.ID, Amount: venue.Price, Status: model.PaymentPending}
	if err := tx.InsertPayment(ctx, &p); err != nil {
		return BookingResult{}, internal("create payment", err)
	}

	res := BookingResult{Outcome: OutcomeConfirmed}
	b.Status, p.Status = model.BookingConfirmed, model.PaymentSuccess
	if s.charge(ctx, p) != PaymentApproved {
		res.Outcome = OutcomePaymentFailed
		b.Status, p.Status = model.BookingCancelled, model.PaymentFailed
	}
	if err := tx.SetPaymentStatus(ctx, b.ID, p.Status); err != nil {
		return BookingResult{}, internal("update payment", err)
	}
	if err := tx.SetBookingStatus(ctx, b.ID, b.Status); err != nil {
		return BookingResult{}, internal("update booking", err)
	}
	if err := tx.Commit(); err != nil {
		return BookingResult{}, internal("commit booking", err)
	}
	committed = true
	res.Booking, res.Payment = b, p

	typ := queue.EventBookingConfirmed
	if res.Outcome == OutcomePaymentFailed {
		typ = queue.EventBookingPaymentFailed
	}
	s.log.Info("booking settled",
		zap.Uint64("booking_id", b.ID),
		zap.Uint64("venue_id", b.VenueID),
		zap.String("date", b.BookingDate),
		zap.String("slot", want.String()),
		zap.String("outcome", string(res.Outcome)),
	)
	s.publish(ctx, typ, b, p, "")
	return res, nil
}

// ListUserBookings returns the user's bookings with venue and payment data.
func (s *BookingService) ListUserBookings(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	items, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, internal("list bookings", err)
	}
	return items, nil
}

func (s *BookingService) validate(in CreateBookingInput) (Interval, error) {
	if in.UserID == 0 || in.VenueID == 0 || strings.TrimSpace(in.BookingDate) == "" ||
		strings.TrimSpace(in.StartTime) == "" || strings.TrimSpace(in.EndTime) == "" {
		return Interval{}, validationf("Missing required fields: user_id, venue_id, booking_date, start_time and end_time are required")
	}
	day, err := time.ParseInLocation(model.DateLayout, in.BookingDate, s.loc)
	if err != nil {
		return Interval{}, validationf("Invalid date format. Use YYYY-MM-DD")
	}
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	if !day.After(today) {
		return Interval{}, validationf("Booking date must be in the future")
	}
	iv, err := NewInterval(strings.TrimSpace(in.StartTime), strings.TrimSpace(in.EndTime))
	if err != nil {
		return Interval{}, validationf("Invalid time range: %v", err)
	}
	return iv, nil
}

// charge runs one bounded payment attempt.  Errors and timeouts count as
// a declined payment.
func (s *BookingService) charge(ctx context.Context, p model.Payment) PaymentOutcome {
	pctx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()
	out, err := s.payments.Attempt(pctx, p.Amount)
	if err != nil {
		s.log.Warn("payment attempt errored", zap.Uint64("booking_id", p.BookingID), zap.Error(err))
		return PaymentDeclined
	}
	return out
}

// detach keeps a started transaction running to commit or rollback even
// if the caller goes away.
func (s *BookingService) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.txTimeout)
}

func (s *BookingService) publish(ctx context.Context, typ string, b model.Booking, p model.Payment, by string) {
	if s.events == nil {
		return
	}
	ev := queue.NewBookingEvent(typ)
	ev.BookingID = b.ID
	ev.UserID = b.UserID
	ev.VenueID = b.VenueID
	ev.BookingDate = b.BookingDate
	ev.StartTime = b.StartTime
	ev.EndTime = b.EndTime
	ev.BookingStatus = b.Status
	ev.PaymentStatus = p.Status
	ev.Amount = p.Amount
	ev.CancelledBy = by
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("publish booking event", zap.String("type", typ), zap.Uint64("booking_id", b.ID), zap.Error(err))
	}
}
