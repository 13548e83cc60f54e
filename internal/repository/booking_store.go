package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lakshmi-kamath/BookMySpace/internal/model"
	"github.com/lakshmi-kamath/BookMySpace/internal/service"
)

// BookingStore is the MySQL implementation of service.BookingStore and
// service.UserStore.  Every method of the returned transactions runs on
// the same *sql.Tx; row locks are taken with SELECT ... FOR UPDATE.
type BookingStore struct {
	db *sql.DB
}

func NewBookingStore(db *sql.DB) *BookingStore { return &BookingStore{db: db} }

var (
	_ service.BookingStore = (*BookingStore)(nil)
	_ service.UserStore    = (*BookingStore)(nil)
)

func (s *BookingStore) begin(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// BeginTx implements service.BookingStore.
func (s *BookingStore) BeginTx(ctx context.Context) (service.BookingTx, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	return &bookingTx{tx: tx}, nil
}

// BeginUserTx implements service.UserStore.
func (s *BookingStore) BeginUserTx(ctx context.Context) (service.UserTx, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	return &userTx{tx: tx}, nil
}

const bookingDetailSelect = `SELECT b.id, b.user_id, b.venue_id, b.booking_date, b.start_time, b.end_time,
	b.status, b.created_at,
	v.name, v.location, v.price,
	u.name, u.email,
	p.status, p.amount
	FROM bookings b
	JOIN venues v ON v.id = b.venue_id
	JOIN users u ON u.id = b.user_id
	LEFT JOIN payments p ON p.booking_id = b.id`

// ListByUser returns the user's bookings, newest first.
func (s *BookingStore) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	rows, err := s.db.QueryContext(ctx, bookingDetailSelect+" WHERE b.user_id = ? ORDER BY b.id DESC", userID)
	if err != nil {
		return nil, err
	}
	return scanDetails(rows)
}

func scanDetails(rows *sql.Rows) ([]model.BookingDetail, error) {
	defer rows.Close()
	out := make([]model.BookingDetail, 0)
	for rows.Next() {
		var d model.BookingDetail
		var day time.Time
		var start, end string
		var payStatus sql.NullString
		var amount sql.NullFloat64
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.VenueID, &day, &start, &end, &d.Status, &d.CreatedAt,
			&d.VenueName, &d.Location, &d.Price,
			&d.UserName, &d.UserEmail,
			&payStatus, &amount,
		); err != nil {
			return nil, err
		}
		d.BookingDate = day.Format(model.DateLayout)
		d.StartTime, d.EndTime = clock(start), clock(end)
		if payStatus.Valid {
			st := payStatus.String
			d.PaymentStatus = &st
		}
		if amount.Valid {
			a := amount.Float64
			d.Amount = &a
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// clock trims a MySQL TIME value ("14:00:00") to HH:MM.
func clock(s string) string {
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}

type bookingTx struct {
	tx *sql.Tx
}

func (t *bookingTx) Commit() error   { return t.tx.Commit() }
func (t *bookingTx) Rollback() error { return t.tx.Rollback() }

// LockSlot locks the venue row.  Every booking creation for the venue
// waits here, which also fixes the lock order to venue then bookings.  A
// missing venue is left for GetVenue to report.
func (t *bookingTx) LockSlot(ctx context.Context, venueID uint64, _ string) error {
	var id uint64
	err := t.tx.QueryRowContext(ctx, "SELECT id FROM venues WHERE id = ? FOR UPDATE", venueID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil
	}
	return err
}

func (t *bookingTx) ActiveIntervals(ctx context.Context, venueID uint64, date string) ([]service.Interval, error) {
	const q = `SELECT start_time, end_time FROM bookings
		WHERE venue_id = ? AND booking_date = ? AND status <> ?
		ORDER BY start_time
		FOR UPDATE`
	rows, err := t.tx.QueryContext(ctx, q, venueID, date, model.BookingCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []service.Interval
	for rows.Next() {
		var start, end string
		if err := rows.Scan(&start, &end); err != nil {
			return nil, err
		}
		iv, err := service.NewInterval(clock(start), clock(end))
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

func (t *bookingTx) GetVenue(ctx context.Context, venueID uint64) (model.Venue, error) {
	return scanVenue(t.tx.QueryRowContext(ctx, "SELECT "+venueColumns+" FROM venues WHERE id = ?", venueID))
}

func (t *bookingTx) UserExists(ctx context.Context, userID uint64) (bool, error) {
	var id uint64
	err := t.tx.QueryRowContext(ctx, "SELECT id FROM users WHERE id = ?", userID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (t *bookingTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, venue_id, booking_date, start_time, end_time, status)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q, b.UserID, b.VenueID, b.BookingDate, b.StartTime, b.EndTime, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return t.tx.QueryRowContext(ctx, "SELECT created_at FROM bookings WHERE id = ?", b.ID).Scan(&b.CreatedAt)
}

func (t *bookingTx) InsertPayment(ctx context.Context, p *model.Payment) error {
	res, err := t.tx.ExecContext(ctx,
		"INSERT INTO payments (booking_id, amount, status) VALUES (?, ?, ?)",
		p.BookingID, p.Amount, p.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return t.tx.QueryRowContext(ctx, "SELECT created_at FROM payments WHERE id = ?", p.ID).Scan(&p.CreatedAt)
}

func (t *bookingTx) BookingForUpdate(ctx context.Context, bookingID uint64) (model.Booking, error) {
	const q = `SELECT id, user_id, venue_id, booking_date, start_time, end_time, status, created_at
		FROM bookings WHERE id = ? FOR UPDATE`
	var b model.Booking
	var day time.Time
	var start, end string
	err := t.tx.QueryRowContext(ctx, q, bookingID).Scan(
		&b.ID, &b.UserID, &b.VenueID, &day, &start, &end, &b.Status, &b.CreatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	b.BookingDate = day.Format(model.DateLayout)
	b.StartTime, b.EndTime = clock(start), clock(end)
	return b, nil
}

func (t *bookingTx) PaymentForUpdate(ctx context.Context, bookingID uint64) (model.Payment, error) {
	const q = "SELECT id, booking_id, amount, status, created_at FROM payments WHERE booking_id = ? FOR UPDATE"
	var p model.Payment
	err := t.tx.QueryRowContext(ctx, q, bookingID).Scan(&p.ID, &p.BookingID, &p.Amount, &p.Status, &p.CreatedAt)
	return p, err
}

func (t *bookingTx) SetBookingStatus(ctx context.Context, bookingID uint64, status string) error {
	_, err := t.tx.ExecContext(ctx, "UPDATE bookings SET status = ? WHERE id = ?", status, bookingID)
	return err
}

func (t *bookingTx) SetPaymentStatus(ctx context.Context, bookingID uint64, status string) error {
	_, err := t.tx.ExecContext(ctx, "UPDATE payments SET status = ? WHERE booking_id = ?", status, bookingID)
	return err
}

type userTx struct {
	tx *sql.Tx
}

func (t *userTx) Commit() error   { return t.tx.Commit() }
func (t *userTx) Rollback() error { return t.tx.Rollback() }

func (t *userTx) UserForUpdate(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(t.tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? FOR UPDATE", id))
}

func (t *userTx) CountAdmins(ctx context.Context) (int, error) {
	// admin rows stay locked until commit
	rows, err := t.tx.QueryContext(ctx, "SELECT id FROM users WHERE role = ? FOR UPDATE", model.RoleAdmin)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}

func (t *userTx) DeleteUser(ctx context.Context, id uint64) error {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (t *userTx) SetRole(ctx context.Context, id uint64, role string) error {
	_, err := t.tx.ExecContext(ctx, "UPDATE users SET role = ? WHERE id = ?", role, id)
	return err
}
