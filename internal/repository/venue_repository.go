package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lakshmi-kamath/BookMySpace/internal/model"
)

// VenueRepo encapsulates the queries on the venues table.
type VenueRepo struct {
	db *sql.DB
}

func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

// VenuePatch carries the fields of a partial update.  Nil fields are left
// untouched.
type VenuePatch struct {
	Name     *string
	Location *string
	Capacity *int
	Price    *float64
}

// Empty reports whether the patch changes nothing.
func (p VenuePatch) Empty() bool {
	return p.Name == nil && p.Location == nil && p.Capacity == nil && p.Price == nil
}

const venueColumns = "id, name, location, capacity, price, created_at"

func scanVenue(row interface{ Scan(...any) error }) (model.Venue, error) {
	var v model.Venue
	err := row.Scan(&v.ID, &v.Name, &v.Location, &v.Capacity, &v.Price, &v.CreatedAt)
	return v, err
}

// Create inserts v and fills in its ID and CreatedAt.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	const q = "INSERT INTO venues (name, location, capacity, price) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, v.Name, v.Location, v.Capacity, v.Price)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*v = stored
	return nil
}

// GetByID returns ErrVenueNotFound when no row matches.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (model.Venue, error) {
	v, err := scanVenue(r.db.QueryRowContext(ctx, "SELECT "+venueColumns+" FROM venues WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Venue{}, ErrVenueNotFound
	}
	return v, err
}

// List returns all venues ordered by id.
func (r *VenueRepo) List(ctx context.Context) ([]model.Venue, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+venueColumns+" FROM venues ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Venue, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Update applies the non-nil fields of p and returns the updated row.
func (r *VenueRepo) Update(ctx context.Context, id uint64, p VenuePatch) (model.Venue, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *p.Location)
	}
	if p.Capacity != nil {
		sets = append(sets, "capacity = ?")
		args = append(args, *p.Capacity)
	}
	if p.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *p.Price)
	}
	if len(sets) > 0 {
		args = append(args, id)
		q := "UPDATE venues SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return model.Venue{}, err
		}
	}
	// RowsAffected is 0 for an unchanged row, so existence is checked by reading back.
	return r.GetByID(ctx, id)
}

// Delete removes a venue.  Venues that still have bookings are refused
// with ErrConflict.
func (r *VenueRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM venues WHERE id = ?", id)
	if err != nil {
		if isForeignKey(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVenueNotFound
	}
	return nil
}
