package database

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrDuplicateEmail indicates a unique email constraint violation
	ErrDuplicateEmail = fmt.Errorf("an account with this email already exists")

	// ErrDuplicateReference indicates a unique payment reference violation
	ErrDuplicateReference = fmt.Errorf("a payment with this reference already exists")
)

// isUniqueViolation reports whether the error is a Postgres unique
// constraint violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
