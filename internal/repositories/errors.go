package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// IsNotFoundError reports whether err means the requested record does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err is a storage-level unique constraint
// violation, optionally restricted to the named constraint. The partial
// index on active reports surfaces here when two concurrent creates race
// past the application pre-check.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// UniqueActiveReportIndex is the partial unique index guaranteeing the
// one-active-report-per-(student, purpose) invariant.
const UniqueActiveReportIndex = "ix_unique_active_report"
