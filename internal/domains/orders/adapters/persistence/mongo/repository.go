package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/domains/orders/ports"
	platformmongo "github.com/plantnet/plantnet-api/internal/platform/mongo"
)

var _ ports.Repository = (*Repository)(nil)

// Repository stores orders in the orders collection. A unique index on
// transactionId (see platform/migrations) rejects duplicate placements.
type Repository struct {
	col      *mongo.Collection
	refunded *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	if db == nil {
		return &Repository{}
	}
	return &Repository{
		col:      db.Collection(platformmongo.OrdersCollection),
		refunded: db.Collection(platformmongo.RefundedIntentsCollection),
	}
}

type partyDocument struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
	Image string `bson:"image,omitempty"`
	Photo string `bson:"photo,omitempty"`
}

type orderDocument struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	PlantID       string               `bson:"plantId"`
	PlantName     string               `bson:"plantName"`
	PlantCategory string               `bson:"plantCategory"`
	PlantImage    string               `bson:"plantImage"`
	Seller        partyDocument        `bson:"seller"`
	Customer      partyDocument        `bson:"customer"`
	Quantity      int                  `bson:"quantity"`
	Price         primitive.Decimal128 `bson:"price"`
	TransactionID string               `bson:"transactionId"`
	Status        string               `bson:"status"`
	CreatedAt     time.Time            `bson:"createdAt"`
}

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureCollection(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	doc, err := toDocument(order)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NewObjectID()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ports.ErrDuplicateOrder
		}
		return nil, err
	}
	return doc.toDomain()
}

func (r *Repository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Order, error) {
	if err := r.ensureCollection(); err != nil {
		return nil, err
	}
	var doc orderDocument
	if err := r.col.FindOne(ctx, bson.M{"transactionId": transactionID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

func (r *Repository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := r.ensureCollection(); err != nil {
		return nil, err
	}
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(docs))
	for i := range docs {
		o, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	if err := r.ensureCollection(); err != nil {
		return 0, err
	}
	return r.col.EstimatedDocumentCount(ctx)
}

// MarkRefunded upserts on _id, so the transaction id is unique without a
// secondary index.
func (r *Repository) MarkRefunded(ctx context.Context, transactionID string, at time.Time) error {
	if err := r.ensureCollection(); err != nil {
		return err
	}
	_, err := r.refunded.UpdateOne(ctx,
		bson.M{"_id": transactionID},
		bson.M{"$setOnInsert": bson.M{"refundedAt": at.UTC()}},
		options.Update().SetUpsert(true))
	return err
}

func (r *Repository) IsRefunded(ctx context.Context, transactionID string) (bool, error) {
	if err := r.ensureCollection(); err != nil {
		return false, err
	}
	n, err := r.refunded.CountDocuments(ctx, bson.M{"_id": transactionID}, options.Count().SetLimit(1))
	return n > 0, err
}

// Collection exposes the underlying collection for read-side aggregations.
func (r *Repository) Collection() *mongo.Collection {
	return r.col
}

func (r *Repository) ensureCollection() error {
	if r == nil || r.col == nil || r.refunded == nil {
		return errors.New("mongo order repository not configured")
	}
	return nil
}

func toDocument(o *domain.Order) (orderDocument, error) {
	price, err := primitive.ParseDecimal128(o.Price.String())
	if err != nil {
		return orderDocument{}, fmt.Errorf("encode order price: %w", err)
	}
	return orderDocument{
		PlantID:       o.PlantID,
		PlantName:     o.PlantName,
		PlantCategory: o.PlantCategory,
		PlantImage:    o.PlantImage,
		Seller:        partyDocument{Name: o.Seller.Name, Email: o.Seller.Email, Image: o.Seller.Image},
		Customer:      partyDocument{Name: o.Customer.Name, Email: o.Customer.Email, Photo: o.Customer.Image},
		Quantity:      o.Quantity,
		Price:         price,
		TransactionID: o.TransactionID,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}, nil
}

func (d orderDocument) toDomain() (*domain.Order, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("decode order price: %w", err)
	}
	return &domain.Order{
		ID:            d.ID.Hex(),
		PlantID:       d.PlantID,
		PlantName:     d.PlantName,
		PlantCategory: d.PlantCategory,
		PlantImage:    d.PlantImage,
		Seller:        domain.Party{Name: d.Seller.Name, Email: d.Seller.Email, Image: d.Seller.Image},
		Customer:      domain.Party{Name: d.Customer.Name, Email: d.Customer.Email, Image: d.Customer.Photo},
		Quantity:      d.Quantity,
		Price:         price,
		TransactionID: d.TransactionID,
		Status:        domain.Status(d.Status),
		CreatedAt:     d.CreatedAt.UTC(),
	}, nil
}
