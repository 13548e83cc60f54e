package service

import (
	"context"
	"fmt"
	"time"
)

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock parses an HH:MM string.  24:00 is not accepted.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60) }

// Interval is the half-open range [Start, End).
type Interval struct {
	Start Clock
	End   Clock
}

// NewInterval parses both ends and requires start < end.
func NewInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	if s >= e {
		return Interval{}, fmt.Errorf("start_time must be before end_time")
	}
	return Interval{Start: s, End: e}, nil
}

// Overlaps reports whether the two intervals share any instant.  Touching
// endpoints do not overlap.
func (i Interval) Overlaps(o Interval) bool { return i.Start < o.End && o.Start < i.End }

func (i Interval) String() string { return i.Start.String() + "-" + i.End.String() }

// MarshalText renders the interval as HH:MM-HH:MM.
func (i Interval) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

// SlotReader is the part of a transaction the checker needs.
type SlotReader interface {
	// ActiveIntervals returns the intervals of every non-cancelled booking
	// for the venue and date, locking the matching rows.
	ActiveIntervals(ctx context.Context, venueID uint64, date string) ([]Interval, error)
}

// SlotChecker decides whether a requested slot collides with an existing
// booking.  It must run in the same transaction, after the slot lock, as
// the insert it guards.
type SlotChecker struct{}

// Check returns nil when the slot is free and a conflict *Error carrying
// the first colliding interval otherwise.
func (SlotChecker) Check(ctx context.Context, tx SlotReader, venueID uint64, date string, want Interval) error {
	taken, err := tx.ActiveIntervals(ctx, venueID, date)
	if err != nil {
		return internal("load booked slots", err)
	}
	for _, iv := range taken {
		if iv.Overlaps(want) {
			existing := iv
			return &Error{
				Kind:     ErrConflict,
				Msg:      fmt.Sprintf("Time slot %s overlaps existing booking %s", want, iv),
				Existing: &existing,
			}
		}
	}
	return nil
}
