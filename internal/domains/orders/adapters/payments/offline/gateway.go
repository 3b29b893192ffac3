// Package offline is a payment gateway for local runs without provider
// credentials. Every intent is created already succeeded, and a refund
// leaves it succeeded with the amount refunded, as card providers do.
package offline

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/domains/orders/ports"
)

var _ ports.PaymentGateway = (*Gateway)(nil)

type Gateway struct {
	mu      sync.Mutex
	intents map[string]domain.PaymentIntent
}

func NewGateway() *Gateway {
	return &Gateway{intents: map[string]domain.PaymentIntent{}}
}

func (g *Gateway) CreateIntent(_ context.Context, req domain.IntentRequest) (*domain.PaymentIntent, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ports.ErrPaymentDeclined)
	}
	id := "pi_offline_" + uuid.NewString()
	intent := domain.PaymentIntent{
		ID:             id,
		Amount:         req.Amount,
		AmountReceived: req.Amount,
		Currency:       req.Currency,
		ClientSecret:   id + "_secret",
		Status:         domain.IntentStatusSucceeded,
		PlantID:        req.PlantID,
		Quantity:       req.Quantity,
	}
	g.mu.Lock()
	g.intents[id] = intent
	g.mu.Unlock()
	return &intent, nil
}

// GetIntent reports unknown ids as not completed.
func (g *Gateway) GetIntent(_ context.Context, id string) (*domain.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[id]
	if !ok {
		return &domain.PaymentIntent{ID: id, Status: "requires_payment_method"}, nil
	}
	return &intent, nil
}

func (g *Gateway) Refund(_ context.Context, intentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[intentID]
	if !ok {
		return ports.ErrPaymentNotCompleted
	}
	intent.AmountRefunded = intent.AmountReceived
	g.intents[intentID] = intent
	return nil
}
