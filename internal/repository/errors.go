// Package repository implements the persistence collaborator on top
// of MySQL.  This file defines error helpers reused across the
// individual repositories so that higher layers can distinguish
// failure scenarios with errors.Is instead of inspecting driver
// errors.  The uniqueness invariants — one reservation per
// (user, date) and one per (date, spot) — are enforced by unique keys
// at the storage boundary and translated into the booking package's
// sentinels here.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a single-row lookup yields no rows.
var ErrNotFound = errors.New("not found")

// mysqlDuplicate reports whether err is a MySQL duplicate-key error
// (errno 1062) and, if so, whether its message names the given unique
// key.  An empty key matches any duplicate-key error.
func mysqlDuplicate(err error, key string) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != 1062 {
		return false
	}
	return key == "" || strings.Contains(me.Message, key)
}
