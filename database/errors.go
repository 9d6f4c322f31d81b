package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes inspected on postgres errors
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// The postgres store keeps pgx errors as they are so the SQLSTATE and the
// constraint name stay available. The sqlite store translates them into
// gorm sentinels instead.
func pgCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	return "", false
}

// IsUniqueViolation reports whether err was caused by a unique key conflict
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	code, ok := pgCode(err)
	return ok && code == uniqueViolation
}

// IsForeignKeyViolation reports whether err was caused by a reference to a
// row that does not exist
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	code, ok := pgCode(err)
	return ok && code == foreignKeyViolation
}

// ConstraintName returns the violated constraint of a postgres error, or ""
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// IsNotFound reports whether err means the requested row does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
