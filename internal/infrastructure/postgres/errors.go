package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation      = "23505"
	pqForeignKeyViolation  = "23503"
	pqInvalidTextRepresent = "22P02"
)

// isUniqueViolation は一意制約違反かを返す
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// isInvalidID は UUID として解釈できないIDが渡された場合かを返す
func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidTextRepresent
}
