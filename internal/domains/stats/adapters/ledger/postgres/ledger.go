package postgres

import (
	"context"

	orderpostgres "github.com/plantnet/plantnet-api/internal/domains/orders/adapters/persistence/postgres"
	"github.com/plantnet/plantnet-api/internal/domains/stats/domain"
	"github.com/plantnet/plantnet-api/internal/domains/stats/ports"
)

// Ledger pushes the daily grouping down to the orders table.
type Ledger struct {
	orders *orderpostgres.Repository
}

func NewLedger(orders *orderpostgres.Repository) *Ledger {
	return &Ledger{orders: orders}
}

func (l *Ledger) DailyTotals(ctx context.Context) ([]domain.DailyTotal, error) {
	rows, err := l.orders.DailyTotals(ctx)
	if err != nil {
		return nil, err
	}
	series := make([]domain.DailyTotal, 0, len(rows))
	for _, row := range rows {
		series = append(series, domain.DailyTotal{Date: row.Day, Orders: row.Orders, Revenue: row.Revenue})
	}
	return series, nil
}

var _ ports.OrderLedger = (*Ledger)(nil)
