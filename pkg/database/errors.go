package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories care about.
const (
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
	codeInvalidTextRepr     = "22P02"
	codeStringDataTruncated = "22001"
)

// PgErrorCode returns the SQLSTATE of err, or "" when err is not a server error.
func PgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return PgErrorCode(err) == codeForeignKeyViolation
}

// IsValidationViolation reports whether err was raised because a written
// value broke a column constraint (check, not-null, type or length).
func IsValidationViolation(err error) bool {
	switch PgErrorCode(err) {
	case codeCheckViolation, codeNotNullViolation, codeInvalidTextRepr, codeStringDataTruncated:
		return true
	default:
		return false
	}
}
