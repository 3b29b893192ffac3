package plantnetserver

import (
	orderapp "github.com/plantnet/plantnet-api/internal/domains/orders/application"
	orderdomain "github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	orderports "github.com/plantnet/plantnet-api/internal/domains/orders/ports"
	plantapp "github.com/plantnet/plantnet-api/internal/domains/plants/application"
	plantdomain "github.com/plantnet/plantnet-api/internal/domains/plants/domain"
	plantports "github.com/plantnet/plantnet-api/internal/domains/plants/ports"
	userapp "github.com/plantnet/plantnet-api/internal/domains/users/application"
	userdomain "github.com/plantnet/plantnet-api/internal/domains/users/domain"
	userports "github.com/plantnet/plantnet-api/internal/domains/users/ports"
	apierrors "github.com/plantnet/plantnet-api/internal/shared/errors"
)

// NewResponder returns the problem responder with every bounded context's
// error rules registered.
func NewResponder(baseURI string) *apierrors.Responder {
	return apierrors.NewResponder(baseURI, plantErrors, orderErrors, userErrors)
}

var plantErrors = apierrors.Rules(
	apierrors.Rule{Target: plantports.ErrNotFound, Problem: apierrors.ErrNotFound},
	apierrors.Rule{Target: plantapp.ErrInvalidInput, Problem: apierrors.ErrValidation},
	apierrors.Rule{Target: plantdomain.ErrInsufficientStock, Problem: apierrors.ErrInsufficientStock},
)

var orderErrors = apierrors.Rules(
	apierrors.Rule{Target: orderports.ErrPlantNotFound, Problem: apierrors.ErrNotFound},
	apierrors.Rule{Target: orderports.ErrNotFound, Problem: apierrors.ErrNotFound},
	apierrors.Rule{Target: orderapp.ErrInvalidInput, Problem: apierrors.ErrValidation},
	apierrors.Rule{Target: orderdomain.ErrInsufficientStock, Problem: apierrors.ErrInsufficientStock},
	apierrors.Rule{Target: orderports.ErrDuplicateOrder, Problem: apierrors.ErrConflict},
	apierrors.Rule{Target: orderports.ErrPaymentDeclined, Problem: apierrors.ErrPaymentRequired},
	apierrors.Rule{Target: orderports.ErrPaymentNotCompleted, Problem: apierrors.ErrPaymentRequired},
	apierrors.Rule{Target: orderports.ErrPaymentRefunded, Problem: apierrors.ErrPaymentRequired},
	apierrors.Rule{Target: orderports.ErrPaymentMismatch, Problem: apierrors.ErrPaymentRequired},
	apierrors.Rule{Target: orderports.ErrPaymentProvider, Problem: apierrors.ErrBadGateway},
)

var userErrors = apierrors.Rules(
	apierrors.Rule{Target: userports.ErrNotFound, Problem: apierrors.ErrNotFound},
	apierrors.Rule{Target: userapp.ErrInvalidInput, Problem: apierrors.ErrValidation},
	apierrors.Rule{Target: userapp.ErrUnauthorized, Problem: apierrors.ErrUnauthorized, Detail: "unauthorized access"},
	apierrors.Rule{Target: userapp.ErrForbidden, Problem: apierrors.ErrForbidden},
	apierrors.Rule{Target: userdomain.ErrInvalidTransition, Problem: apierrors.ErrConflict},
)
