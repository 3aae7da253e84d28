package repository

import (
	"errors"

	"taskboard/shared/constant"

	"github.com/lib/pq"
)

// IsUniqueViolation reports whether err was caused by a unique or primary key
// constraint, for both the Postgres driver and the SQLite driver used in tests.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == constant.PqErrorCodeUniqueViolation
	}

	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		return coded.Code() == constant.SqliteErrorCodeConstraintUnique || coded.Code() == constant.SqliteErrorCodeConstraintPrimaryKey
	}

	return false
}
