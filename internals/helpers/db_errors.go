package helper

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation understands pgx, lib/pq and sqlite error shapes.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation || containsAny(err,
		"duplicate key", "unique constraint", "sqlstate 23505")
}

func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == pgForeignKeyViolation || containsAny(err,
		"foreign key constraint", "sqlstate 23503")
}

func pgCode(err error) string {
	if err == nil {
		return ""
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func containsAny(err error, needles ...string) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
