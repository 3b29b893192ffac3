package orders

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/plantnet/plantnet-api/internal/domains/orders/application"
	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/domains/orders/ports"
)

// Application error types carried across the workflow boundary.
const (
	ErrTypeInsufficientStock   = "orders.InsufficientStock"
	ErrTypeDuplicateOrder      = "orders.DuplicateOrder"
	ErrTypePaymentNotCompleted = "orders.PaymentNotCompleted"
	ErrTypePaymentDeclined     = "orders.PaymentDeclined"
	ErrTypePaymentRefunded     = "orders.PaymentRefunded"
	ErrTypePaymentMismatch     = "orders.PaymentMismatch"
	ErrTypePlantNotFound       = "orders.PlantNotFound"
	ErrTypeInvalidInput        = "orders.InvalidInput"
)

var businessErrors = []struct {
	kind     string
	sentinel error
}{
	{ErrTypeInsufficientStock, domain.ErrInsufficientStock},
	{ErrTypeDuplicateOrder, ports.ErrDuplicateOrder},
	{ErrTypePaymentNotCompleted, ports.ErrPaymentNotCompleted},
	{ErrTypePaymentDeclined, ports.ErrPaymentDeclined},
	{ErrTypePaymentRefunded, ports.ErrPaymentRefunded},
	{ErrTypePaymentMismatch, ports.ErrPaymentMismatch},
	{ErrTypePlantNotFound, ports.ErrPlantNotFound},
	{ErrTypeInvalidInput, application.ErrInvalidInput},
}

// NonRetryableErrorTypes lists outcomes that retrying cannot change.
func NonRetryableErrorTypes() []string {
	types := make([]string, 0, len(businessErrors))
	for _, be := range businessErrors {
		types = append(types, be.kind)
	}
	return types
}

// toApplicationError tags business failures so the workflow can branch on
// them. Infrastructure errors pass through and stay retryable.
func toApplicationError(err error) error {
	if err == nil {
		return nil
	}
	for _, be := range businessErrors {
		if errors.Is(err, be.sentinel) {
			return temporal.NewNonRetryableApplicationError(err.Error(), be.kind, err)
		}
	}
	return err
}

// IsInsufficientStock reports whether err is the tagged stock failure.
func IsInsufficientStock(err error) bool {
	var appErr *temporal.ApplicationError
	return errors.As(err, &appErr) && appErr.Type() == ErrTypeInsufficientStock
}

// FromWorkflowError restores the domain sentinel from a failed workflow run.
func FromWorkflowError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	for _, be := range businessErrors {
		if appErr.Type() == be.kind {
			return fmt.Errorf("%w: %s", be.sentinel, appErr.Message())
		}
	}
	return err
}
