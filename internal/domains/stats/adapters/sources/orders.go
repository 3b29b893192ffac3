// Package sources adapts the other bounded contexts into statistics inputs.
package sources

import (
	"context"

	orderports "github.com/plantnet/plantnet-api/internal/domains/orders/ports"
	"github.com/plantnet/plantnet-api/internal/domains/stats/domain"
	"github.com/plantnet/plantnet-api/internal/domains/stats/ports"
)

// OrderLedger aggregates in process over every stored order.
type OrderLedger struct {
	orders orderports.Repository
}

func NewOrderLedger(orders orderports.Repository) *OrderLedger {
	return &OrderLedger{orders: orders}
}

func (l *OrderLedger) DailyTotals(ctx context.Context) ([]domain.DailyTotal, error) {
	orders, err := l.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	facts := make([]domain.OrderFact, 0, len(orders))
	for _, o := range orders {
		facts = append(facts, domain.OrderFact{CreatedAt: o.CreatedAt, Price: o.Price})
	}
	return domain.BuildDailySeries(facts), nil
}

var _ ports.OrderLedger = (*OrderLedger)(nil)
