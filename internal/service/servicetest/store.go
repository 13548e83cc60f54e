// Package servicetest provides an in-memory store for exercising the
// booking core without MySQL.  Transactions are fully serialized: one
// open transaction holds the store until it commits or rolls back, and
// its writes become visible only on commit.
package servicetest

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/lakshmi-kamath/BookMySpace/internal/model"
	"github.com/lakshmi-kamath/BookMySpace/internal/queue"
	"github.com/lakshmi-kamath/BookMySpace/internal/service"
)

// ErrTxDone is returned by a transaction used after Commit or Rollback.
var ErrTxDone = errors.New("servicetest: transaction already finished")

type state struct {
	users    map[uint64]model.User
	venues   map[uint64]model.Venue
	bookings map[uint64]model.Booking
	payments map[uint64]model.Payment // keyed by booking id
	seq      uint64
}

func (s *state) clone() *state {
	c := &state{
		users:    make(map[uint64]model.User, len(s.users)),
		venues:   make(map[uint64]model.Venue, len(s.venues)),
		bookings: make(map[uint64]model.Booking, len(s.bookings)),
		payments: make(map[uint64]model.Payment, len(s.payments)),
		seq:      s.seq,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.venues {
		c.venues[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	return c
}

func (s *state) next() uint64 {
	s.seq++
	return s.seq
}

// Store implements service.BookingStore and service.UserStore.
type Store struct {
	txMu sync.Mutex // held by the open transaction

	mu       sync.Mutex
	st       *state
	failures map[string]error
	commits  int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		st: &state{
			users:    map[uint64]model.User{},
			venues:   map[uint64]model.Venue{},
			bookings: map[uint64]model.Booking{},
			payments: map[uint64]model.Payment{},
		},
		failures: map[string]error{},
	}
}

// FailOn makes the named transaction method (e.g. "InsertPayment",
// "Commit") return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[op]
}

// AddUser stores u with a fresh id.
func (s *Store) AddUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.st.next()
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	u.CreatedAt = time.Now().UTC()
	s.st.users[u.ID] = u
	return u
}

// AddVenue stores v with a fresh id.
func (s *Store) AddVenue(v model.Venue) model.Venue {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.st.next()
	v.CreatedAt = time.Now().UTC()
	s.st.venues[v.ID] = v
	return v
}

// AddBooking stores b with a fresh id and, when paymentStatus is not
// empty, a payment for amount in that status.
func (s *Store) AddBooking(b model.Booking, paymentStatus string, amount float64) model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.st.next()
	b.CreatedAt = time.Now().UTC()
	s.st.bookings[b.ID] = b
	if paymentStatus != "" {
		s.st.payments[b.ID] = model.Payment{
			ID:        s.st.next(),
			BookingID: b.ID,
			Amount:    amount,
			Status:    paymentStatus,
			CreatedAt: b.CreatedAt,
		}
	}
	return b
}

// User returns the committed user row.
func (s *Store) User(id uint64) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	return u, ok
}

// Booking returns the committed booking row.
func (s *Store) Booking(id uint64) (model.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.st.bookings[id]
	return b, ok
}

// Payment returns the committed payment of a booking.
func (s *Store) Payment(bookingID uint64) (model.Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.payments[bookingID]
	return p, ok
}

// Bookings returns all committed bookings ordered by id.
func (s *Store) Bookings() []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0, len(s.st.bookings))
	for _, b := range s.st.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Payments returns the number of committed payment rows.
func (s *Store) Payments() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.payments)
}

// Commits counts successful commits.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// BeginTx implements service.BookingStore.
func (s *Store) BeginTx(ctx context.Context) (service.BookingTx, error) { return s.begin(ctx) }

// BeginUserTx implements service.UserStore.
func (s *Store) BeginUserTx(ctx context.Context) (service.UserTx, error) { return s.begin(ctx) }

func (s *Store) begin(ctx context.Context) (*Tx, error) {
	if err := s.failure("BeginTx"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.txMu.Lock()
	s.mu.Lock()
	st := s.st.clone()
	s.mu.Unlock()
	return &Tx{store: s, st: st}, nil
}

// ListByUser implements service.BookingStore.
func (s *Store) ListByUser(_ context.Context, userID uint64) ([]model.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.BookingDetail, 0)
	for _, b := range s.st.bookings {
		if b.UserID != userID {
			continue
		}
		v := s.st.venues[b.VenueID]
		d := model.BookingDetail{Booking: b, VenueName: v.Name, Location: v.Location, Price: v.Price}
		if p, ok := s.st.payments[b.ID]; ok {
			status, amount := p.Status, p.Amount
			d.PaymentStatus, d.Amount = &status, &amount
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Tx is an open transaction on a private copy of the store.
type Tx struct {
	store *Store
	st    *state
	done  bool
}

func (t *Tx) check(op string) error {
	if t.done {
		return ErrTxDone
	}
	return t.store.failure(op)
}

// Commit publishes the transaction's writes.
func (t *Tx) Commit() error {
	if err := t.check("Commit"); err != nil {
		return err
	}
	t.store.mu.Lock()
	t.store.st = t.st
	t.store.commits++
	t.store.mu.Unlock()
	t.finish()
	return nil
}

// Rollback discards the transaction's writes.  It is safe after Commit.
func (t *Tx) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.store.txMu.Unlock()
}

func (t *Tx) LockSlot(context.Context, uint64, string) error { return t.check("LockSlot") }

func (t *Tx) ActiveIntervals(_ context.Context, venueID uint64, date string) ([]service.Interval, error) {
	if err := t.check("ActiveIntervals"); err != nil {
		return nil, err
	}
	var out []service.Interval
	for _, b := range t.st.bookings {
		if b.VenueID != venueID || b.BookingDate != date || b.Status == model.BookingCancelled {
			continue
		}
		iv, err := service.NewInterval(b.StartTime, b.EndTime)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (t *Tx) GetVenue(_ context.Context, venueID uint64) (model.Venue, error) {
	if err := t.check("GetVenue"); err != nil {
		return model.Venue{}, err
	}
	v, ok := t.st.venues[venueID]
	if !ok {
		return model.Venue{}, sql.ErrNoRows
	}
	return v, nil
}

func (t *Tx) UserExists(_ context.Context, userID uint64) (bool, error) {
	if err := t.check("UserExists"); err != nil {
		return false, err
	}
	_, ok := t.st.users[userID]
	return ok, nil
}

func (t *Tx) InsertBooking(_ context.Context, b *model.Booking) error {
	if err := t.check("InsertBooking"); err != nil {
		return err
	}
	b.ID = t.st.next()
	b.CreatedAt = time.Now().UTC()
	t.st.bookings[b.ID] = *b
	return nil
}

func (t *Tx) InsertPayment(_ context.Context, p *model.Payment) error {
	if err := t.check("InsertPayment"); err != nil {
		return err
	}
	if _, ok := t.st.bookings[p.BookingID]; !ok {
		return errors.New("servicetest: payment references a missing booking")
	}
	if _, dup := t.st.payments[p.BookingID]; dup {
		return errors.New("servicetest: duplicate payment for booking")
	}
	p.ID = t.st.next()
	p.CreatedAt = time.Now().UTC()
	t.st.payments[p.BookingID] = *p
	return nil
}

func (t *Tx) BookingForUpdate(_ context.Context, bookingID uint64) (model.Booking, error) {
	if err := t.check("BookingForUpdate"); err != nil {
		return model.Booking{}, err
	}
	b, ok := t.st.bookings[bookingID]
	if !ok {
		return model.Booking{}, sql.ErrNoRows
	}
	return b, nil
}

func (t *Tx) PaymentForUpdate(_ context.Context, bookingID uint64) (model.Payment, error) {
	if err := t.check("PaymentForUpdate"); err != nil {
		return model.Payment{}, err
	}
	p, ok := t.st.payments[bookingID]
	if !ok {
		return model.Payment{}, sql.ErrNoRows
	}
	return p, nil
}

func (t *Tx) SetBookingStatus(_ context.Context, bookingID uint64, status string) error {
	if err := t.check("SetBookingStatus"); err != nil {
		return err
	}
	b, ok := t.st.bookings[bookingID]
	if !ok {
		return sql.ErrNoRows
	}
	b.Status = status
	t.st.bookings[bookingID] = b
	return nil
}

func (t *Tx) SetPaymentStatus(_ context.Context, bookingID uint64, status string) error {
	if err := t.check("SetPaymentStatus"); err != nil {
		return err
	}
	p, ok := t.st.payments[bookingID]
	if !ok {
		return sql.ErrNoRows
	}
	p.Status = status
	t.st.payments[bookingID] = p
	return nil
}

func (t *Tx) UserForUpdate(_ context.Context, id uint64) (model.User, error) {
	if err := t.check("UserForUpdate"); err != nil {
		return model.User{}, err
	}
	u, ok := t.st.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (t *Tx) CountAdmins(context.Context) (int, error) {
	if err := t.check("CountAdmins"); err != nil {
		return 0, err
	}
	n := 0
	for _, u := range t.st.users {
		if u.IsAdmin() {
			n++
		}
	}
	return n, nil
}

func (t *Tx) DeleteUser(_ context.Context, id uint64) error {
	if err := t.check("DeleteUser"); err != nil {
		return err
	}
	if _, ok := t.st.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(t.st.users, id)
	return nil
}

func (t *Tx) SetRole(_ context.Context, id uint64, role string) error {
	if err := t.check("SetRole"); err != nil {
		return err
	}
	u, ok := t.st.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Role = role
	t.st.users[id] = u
	return nil
}

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

// Publish implements service.EventPublisher.
func (p *Publisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

// Last returns the most recent event.
func (p *Publisher) Last() (queue.BookingEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return queue.BookingEvent{}, false
	}
	return p.events[len(p.events)-1], true
}

// Types returns a copy of the recorded event types.
func (p *Publisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// FixedPayment always returns Outcome, or Err when set.
type FixedPayment struct {
	Outcome service.PaymentOutcome
	Err     error

	mu    sync.Mutex
	calls int
}

// Attempt implements service.PaymentProcessor.
func (f *FixedPayment) Attempt(context.Context, float64) (service.PaymentOutcome, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.Outcome, f.Err
}

// Calls returns how many attempts were made.
func (f *FixedPayment) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
