package mongo

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/plantnet/plantnet-api/internal/domains/stats/domain"
	"github.com/plantnet/plantnet-api/internal/domains/stats/ports"
)

// Ledger runs the daily grouping as an aggregation pipeline.
type Ledger struct {
	orders *mongo.Collection
}

func NewLedger(orders *mongo.Collection) *Ledger {
	return &Ledger{orders: orders}
}

type dailyDocument struct {
	Day     string               `bson:"_id"`
	Orders  int64                `bson:"dailyOrder"`
	Revenue primitive.Decimal128 `bson:"dailyRevenue"`
}

// pipeline groups by the UTC day of createdAt.
func pipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$createdAt"},
				{Key: "timezone", Value: "UTC"},
			}}}},
			{Key: "dailyOrder", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "dailyRevenue", Value: bson.D{{Key: "$sum", Value: "$price"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func (l *Ledger) DailyTotals(ctx context.Context) ([]domain.DailyTotal, error) {
	if l == nil || l.orders == nil {
		return nil, errors.New("mongo order ledger not configured")
	}
	cur, err := l.orders.Aggregate(ctx, pipeline())
	if err != nil {
		return nil, err
	}
	var docs []dailyDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	series := make([]domain.DailyTotal, 0, len(docs))
	for _, doc := range docs {
		revenue, err := decimal.NewFromString(doc.Revenue.String())
		if err != nil {
			return nil, err
		}
		series = append(series, domain.DailyTotal{Date: doc.Day, Orders: doc.Orders, Revenue: revenue})
	}
	return series, nil
}

var _ ports.OrderLedger = (*Ledger)(nil)
