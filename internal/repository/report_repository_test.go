package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestReportFilter_Where(t *testing.T) {
	where, args := ReportFilter{}.where()
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = ReportFilter{From: "2026-10-01", To: "2026-10-31", VenueID: 3, Status: "confirmed"}.where()
	assert.Equal(t, " WHERE b.booking_date >= ? AND b.booking_date <= ? AND b.venue_id = ? AND b.status = ?", where)
	assert.Equal(t, []any{"2026-10-01", "2026-10-31", uint64(3), "confirmed"}, args)

	where, args = ReportFilter{UserID: 9}.where()
	assert.Equal(t, " WHERE b.user_id = ?", where)
	assert.Equal(t, []any{uint64(9)}, args)
}

func TestClock(t *testing.T) {
	assert.Equal(t, "14:00", clock("14:00:00"))
	assert.Equal(t, "09:30", clock("09:30"))
	assert.Equal(t, "", clock(""))
}

func TestVenuePatch_Empty(t *testing.T) {
	assert.True(t, VenuePatch{}.Empty())
	price := 10.0
	assert.False(t, VenuePatch{Price: &price}.Empty())
}

func TestDriverErrorClassification(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b' for key 'email'"}
	assert.True(t, isDuplicate(dup))
	assert.True(t, isDuplicate(fmt.Errorf("insert user: %w", dup)))
	assert.False(t, isDuplicate(nil))
	assert.False(t, isDuplicate(errors.New("Error 1062")), "only driver errors count")
	assert.True(t, isForeignKey(&mysql.MySQLError{Number: 1451}))
	assert.False(t, isForeignKey(dup))
}
