package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// ErrorClass buckets driver errors by whether a transaction may be retried.
type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

const uniqueViolation = "23505"

// ClassifyError inspects lib/pq SQLSTATE codes.
func ClassifyError(err error) ErrorClass {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return ErrorClassPermanent
	}
	switch pqErr.Code {
	case "40001":
		return ErrorClassSerialization
	case "40P01":
		return ErrorClassDeadlock
	case "55P03", "57014":
		return ErrorClassTransient
	default:
		return ErrorClassPermanent
	}
}

// IsRetryable reports whether the whole transaction can be replayed.
func IsRetryable(err error) bool {
	switch ClassifyError(err) {
	case ErrorClassTransient, ErrorClassDeadlock, ErrorClassSerialization:
		return true
	default:
		return false
	}
}

// IsUniqueViolation reports a unique index conflict, optionally on a named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
