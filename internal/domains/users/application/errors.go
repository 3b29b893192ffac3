package application

import (
	"errors"
	"fmt"

	"github.com/plantnet/plantnet-api/internal/domains/users/domain"
	"github.com/plantnet/plantnet-api/internal/platform/auth"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid user input")
	// ErrUnauthorized covers missing, invalid, expired, and revoked tokens.
	ErrUnauthorized = errors.New("unauthorized access")
	// ErrForbidden means the caller is authenticated but not allowed.
	ErrForbidden = errors.New("forbidden access")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmailRequired) ||
		errors.Is(err, domain.ErrInvalidEmail) ||
		errors.Is(err, domain.ErrInvalidRole) ||
		errors.Is(err, auth.ErrMissingEmail) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
