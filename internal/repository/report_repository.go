package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lakshmi-kamath/BookMySpace/internal/model"
)

// ReportFilter narrows the admin reports.  Zero values mean "any".  From
// and To are inclusive YYYY-MM-DD bounds on booking_date.
type ReportFilter struct {
	From    string
	To      string
	VenueID uint64
	UserID  uint64
	Status  string
}

// where renders the filter as a SQL condition on the bookings alias b.
func (f ReportFilter) where() (string, []any) {
	conds := make([]string, 0, 5)
	args := make([]any, 0, 5)
	if f.From != "" {
		conds = append(conds, "b.booking_date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		conds = append(conds, "b.booking_date <= ?")
		args = append(args, f.To)
	}
	if f.VenueID != 0 {
		conds = append(conds, "b.venue_id = ?")
		args = append(args, f.VenueID)
	}
	if f.UserID != 0 {
		conds = append(conds, "b.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		conds = append(conds, "b.status = ?")
		args = append(args, f.Status)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Statistics is the flat counter set shown on the admin dashboard.
type Statistics struct {
	TotalBookings     int     `json:"total_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings"`
	PendingBookings   int     `json:"pending_bookings"`
	CancelledBookings int     `json:"cancelled_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalRefunded     float64 `json:"total_refunded"`
	TotalVenues       int     `json:"total_venues"`
	TotalUsers        int     `json:"total_users"`
}

// VenueRevenue is collected revenue for one venue.
type VenueRevenue struct {
	VenueID   uint64  `json:"venue_id"`
	VenueName string  `json:"venue_name"`
	Bookings  int     `json:"bookings"`
	Revenue   float64 `json:"revenue"`
}

// Revenue is the revenue report: successful payments only.
type Revenue struct {
	Total  float64        `json:"total_revenue"`
	Venues []VenueRevenue `json:"venues"`
}

// ReportRepo serves the read-only admin reports.  Queries run outside any
// transaction.
type ReportRepo struct {
	db *sql.DB
}

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// ListAll returns every booking matching f, newest first.
func (r *ReportRepo) ListAll(ctx context.Context, f ReportFilter) ([]model.BookingDetail, error) {
	where, args := f.where()
	rows, err := r.db.QueryContext(ctx, bookingDetailSelect+where+" ORDER BY b.id DESC", args...)
	if err != nil {
		return nil, err
	}
	return scanDetails(rows)
}

// Statistics aggregates bookings and payments matching f.  Venue and user
// totals are global.
func (r *ReportRepo) Statistics(ctx context.Context, f ReportFilter) (Statistics, error) {
	where, args := f.where()
	q := `SELECT COUNT(*),
	             COALESCE(SUM(b.status = 'confirmed'), 0),
	             COALESCE(SUM(b.status = 'pending'), 0),
	             COALESCE(SUM(b.status = 'cancelled'), 0),
	             COALESCE(SUM(CASE WHEN p.status = 'success' THEN p.amount ELSE 0 END), 0),
	             COALESCE(SUM(CASE WHEN p.status = 'refunded' THEN p.amount ELSE 0 END), 0)
	      FROM bookings b
	      LEFT JOIN payments p ON p.booking_id = b.id` + where
	var st Statistics
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(
		&st.TotalBookings, &st.ConfirmedBookings, &st.PendingBookings, &st.CancelledBookings,
		&st.TotalRevenue, &st.TotalRefunded,
	); err != nil {
		return Statistics{}, err
	}
	if err := r.db.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM venues), (SELECT COUNT(*) FROM users)",
	).Scan(&st.TotalVenues, &st.TotalUsers); err != nil {
		return Statistics{}, err
	}
	return st, nil
}

// Revenue sums successful payments per venue for bookings matching f.
func (r *ReportRepo) Revenue(ctx context.Context, f ReportFilter) (Revenue, error) {
	where, args := f.where()
	cond := " WHERE p.status = 'success'"
	if where != "" {
		cond = where + " AND p.status = 'success'"
	}
	q := `SELECT v.id, v.name, COUNT(*), COALESCE(SUM(p.amount), 0)
	      FROM bookings b
	      JOIN payments p ON p.booking_id = b.id
	      JOIN venues v ON v.id = b.venue_id` + cond + `
	      GROUP BY v.id, v.name
	      ORDER BY v.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return Revenue{}, err
	}
	defer rows.Close()

	out := Revenue{Venues: make([]VenueRevenue, 0)}
	for rows.Next() {
		var vr VenueRevenue
		if err := rows.Scan(&vr.VenueID, &vr.VenueName, &vr.Bookings, &vr.Revenue); err != nil {
			return Revenue{}, err
		}
		out.Total += vr.Revenue
		out.Venues = append(out.Venues, vr)
	}
	return out, rows.Err()
}
