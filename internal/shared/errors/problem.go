// Package errors renders plantNet failures as RFC 7807 problem details.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is an RFC 7807 response body. Detail carries the message
// shown to the dashboard user.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

const (
	TypeValidation      = "/problems/validation-error"
	TypeNotFound        = "/problems/not-found"
	TypeConflict        = "/problems/conflict"
	TypeInsufficient    = "/problems/insufficient-stock"
	TypeInternal        = "/problems/internal-error"
	TypeUnauthorized    = "/problems/unauthorized"
	TypeForbidden       = "/problems/forbidden"
	TypeBadRequest      = "/problems/bad-request"
	TypePaymentRequired = "/problems/payment-required"
	TypeBadGateway      = "/problems/payment-provider-unavailable"
)

func problem(typ, title string, status int) ProblemDetail {
	return ProblemDetail{Type: typ, Title: title, Status: status}
}

var (
	ErrNotFound        = problem(TypeNotFound, "Resource Not Found", http.StatusNotFound)
	ErrValidation      = problem(TypeValidation, "Validation Error", http.StatusBadRequest)
	ErrBadRequest      = problem(TypeBadRequest, "Bad Request", http.StatusBadRequest)
	ErrConflict        = problem(TypeConflict, "Conflict", http.StatusConflict)
	ErrUnauthorized    = problem(TypeUnauthorized, "Unauthorized", http.StatusUnauthorized)
	ErrForbidden       = problem(TypeForbidden, "Forbidden", http.StatusForbidden)
	ErrBadGateway      = problem(TypeBadGateway, "Payment Provider Unavailable", http.StatusBadGateway)
	ErrPaymentRequired = problem(TypePaymentRequired, "Payment Required", http.StatusPaymentRequired)

	// ErrInsufficientStock is a conflict specialised for inventory shortfalls.
	ErrInsufficientStock = problem(TypeInsufficient, "Insufficient Stock", http.StatusConflict)

	// ErrInternal never leaks the underlying error text to clients.
	ErrInternal = problem(TypeInternal, "Internal Server Error", http.StatusInternalServerError)
)
