package application

import (
	"errors"
	"fmt"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrMissingPlant) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrMissingTransaction) ||
		errors.Is(err, domain.ErrMissingCustomer) ||
		errors.Is(err, domain.ErrInvalidDirection) ||
		errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrNothingToCharge) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
