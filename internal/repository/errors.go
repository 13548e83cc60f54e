// Package repository holds the MySQL access code.  Sentinel errors below
// are shared by several repositories so handlers can tell failure cases
// apart without looking at driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrEmailExists is returned when a signup collides with the unique
// email index.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when a user id does not match any row.
var ErrUserNotFound = errors.New("user not found")

// ErrVenueNotFound is returned when a venue id does not match any row.
var ErrVenueNotFound = errors.New("venue not found")

// ErrConflict is returned when a write cannot be applied because other
// rows depend on the target, such as deleting a venue that still has
// bookings.  Handlers translate it into a 409.
var ErrConflict = errors.New("conflict")

// isDuplicate reports a MySQL 1062 duplicate key error.
func isDuplicate(err error) bool { return mysqlCode(err) == 1062 }

// isForeignKey reports a MySQL 1451 "row is referenced" error.
func isForeignKey(err error) bool { return mysqlCode(err) == 1451 }

func mysqlCode(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}
