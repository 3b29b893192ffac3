// Package stripe implements the payment gateway on the Stripe API.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/domains/orders/ports"
)

var _ ports.PaymentGateway = (*Gateway)(nil)

// ErrMissingKey is returned when no secret key is configured.
var ErrMissingKey = errors.New("stripe secret key is required")

type Gateway struct {
	api *client.API
}

// New builds a gateway against the live Stripe API.
func New(secretKey string) (*Gateway, error) {
	return NewWithBackends(secretKey, nil)
}

// NewWithBackends lets callers point the client at a different API base.
func NewWithBackends(secretKey string, backends *stripeapi.Backends) (*Gateway, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, ErrMissingKey
	}
	api := &client.API{}
	api.Init(secretKey, backends)
	return &Gateway{api: api}, nil
}

// CreateIntent opens an intent with automatic payment methods enabled and
// the purchase stamped into its metadata.
func (g *Gateway) CreateIntent(ctx context.Context, req domain.IntentRequest) (*domain.PaymentIntent, error) {
	params := &stripeapi.PaymentIntentParams{
		Amount:   stripeapi.Int64(req.Amount),
		Currency: stripeapi.String(req.Currency),
		AutomaticPaymentMethods: &stripeapi.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeapi.Bool(true),
		},
	}
	params.AddMetadata(domain.MetadataPlantID, req.PlantID)
	params.AddMetadata(domain.MetadataQuantity, strconv.Itoa(req.Quantity))
	params.Context = ctx
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, translate("create payment intent", err)
	}
	return toIntent(pi), nil
}

// GetIntent expands the latest charge, since refunds live on the charge
// and leave the intent succeeded.
func (g *Gateway) GetIntent(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	params := &stripeapi.PaymentIntentParams{}
	params.AddExpand("latest_charge")
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		var stripeErr *stripeapi.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripeapi.ErrorCodeResourceMissing {
			return nil, fmt.Errorf("%w: unknown payment intent %s", ports.ErrPaymentNotCompleted, id)
		}
		return nil, translate("retrieve payment intent", err)
	}
	return toIntent(pi), nil
}

func (g *Gateway) Refund(ctx context.Context, intentID string) error {
	params := &stripeapi.RefundParams{PaymentIntent: stripeapi.String(intentID)}
	params.Context = ctx
	if _, err := g.api.Refunds.New(params); err != nil {
		return translate("refund payment intent", err)
	}
	return nil
}

func toIntent(pi *stripeapi.PaymentIntent) *domain.PaymentIntent {
	intent := &domain.PaymentIntent{
		ID:             pi.ID,
		Amount:         pi.Amount,
		AmountReceived: pi.AmountReceived,
		Currency:       string(pi.Currency),
		ClientSecret:   pi.ClientSecret,
		Status:         string(pi.Status),
		PlantID:        pi.Metadata[domain.MetadataPlantID],
	}
	if q, err := strconv.Atoi(pi.Metadata[domain.MetadataQuantity]); err == nil {
		intent.Quantity = q
	}
	if pi.LatestCharge != nil {
		intent.AmountRefunded = pi.LatestCharge.AmountRefunded
	}
	return intent
}

// translate maps card errors to ErrPaymentDeclined and everything else to
// ErrPaymentProvider, keeping the provider message.
func translate(op string, err error) error {
	var stripeErr *stripeapi.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Type == stripeapi.ErrorTypeCard {
			return fmt.Errorf("%w: %s", ports.ErrPaymentDeclined, stripeErr.Msg)
		}
		return fmt.Errorf("%w: %s: %s", ports.ErrPaymentProvider, op, stripeErr.Msg)
	}
	return fmt.Errorf("%w: %s: %w", ports.ErrPaymentProvider, op, err)
}
