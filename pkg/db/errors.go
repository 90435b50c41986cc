package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
)

// SQLSTATE raised by postgres for a unique index failure.
const pgUniqueViolation = "23505"

// Driver messages for a unique index failure, for dialects gorm does not translate.
var uniqueViolationMarkers = []string{
	"duplicate key value",      // postgres
	"UNIQUE constraint failed", // sqlite
}

// IsUniqueViolation reports whether err is a unique index failure. A non-empty constraint
// must match the postgres constraint name, or appear in the driver message otherwise.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
	}
	msg := err.Error()
	if constraint != "" && !strings.Contains(msg, constraint) {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	for _, marker := range uniqueViolationMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether a lookup found no rows.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Wrap maps a persistence error onto the application error codes. Anything it does not
// recognise is a dependency failure.
func Wrap(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case IsNotFound(err):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, msg)
	case IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, msg)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg+": timed out")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
	}
}
