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

	"github.com/plantnet/plantnet-api/internal/domains/plants/domain"
	"github.com/plantnet/plantnet-api/internal/domains/plants/ports"
	platformmongo "github.com/plantnet/plantnet-api/internal/platform/mongo"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists listings in the plants collection. Passing a session
// context joins the surrounding transaction.
type Repository struct {
	col *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	if db == nil {
		return &Repository{}
	}
	return &Repository{col: db.Collection(platformmongo.PlantsCollection)}
}

type sellerDocument struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
	Image string `bson:"image"`
}

type plantDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Name        string               `bson:"name"`
	Category    string               `bson:"category"`
	Description string               `bson:"description"`
	Image       string               `bson:"image"`
	Price       primitive.Decimal128 `bson:"price"`
	Quantity    int                  `bson:"quantity"`
	Seller      sellerDocument       `bson:"seller"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

func (r *Repository) Create(ctx context.Context, plant *domain.Plant) (*domain.Plant, error) {
	if err := r.ensureCollection(); err != nil {
		return nil, err
	}
	if plant == nil {
		return nil, errors.New("plant is nil")
	}
	doc, err := toDocument(plant)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toDomain()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Plant, error) {
	if err := r.ensureCollection(); err != nil {
		return nil, err
	}
	oid, ok := platformmongo.ParseObjectID(id)
	if !ok {
		return nil, ports.ErrNotFound
	}
	var doc plantDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

func (r *Repository) List(ctx context.Context) ([]*domain.Plant, error) {
	if err := r.ensureCollection(); err != nil {
		return nil, err
	}
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []plantDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	plants := make([]*domain.Plant, 0, len(docs))
	for i := range docs {
		p, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		plants = append(plants, p)
	}
	return plants, nil
}

// Count uses collection metadata rather than a scan.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	if err := r.ensureCollection(); err != nil {
		return 0, err
	}
	return r.col.EstimatedDocumentCount(ctx)
}

// AdjustQuantity applies $inc with a $gte guard for decrements.
func (r *Repository) AdjustQuantity(ctx context.Context, id string, delta int) (*domain.Plant, error) {
	if err := r.ensureCollection(); err != nil {
		return nil, err
	}
	oid, ok := platformmongo.ParseObjectID(id)
	if !ok {
		return nil, ports.ErrNotFound
	}
	filter := bson.M{"_id": oid}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}
	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	var doc plantDocument
	err := r.col.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, domain.ErrInsufficientStock
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain()
}

func (r *Repository) ensureCollection() error {
	if r == nil || r.col == nil {
		return errors.New("mongo plant repository not configured")
	}
	return nil
}

func toDocument(p *domain.Plant) (plantDocument, error) {
	price, err := primitive.ParseDecimal128(p.Price.String())
	if err != nil {
		return plantDocument{}, fmt.Errorf("encode plant price: %w", err)
	}
	return plantDocument{
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Image:       p.Image,
		Price:       price,
		Quantity:    p.Quantity,
		Seller:      sellerDocument{Name: p.Seller.Name, Email: p.Seller.Email, Image: p.Seller.Image},
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (d plantDocument) toDomain() (*domain.Plant, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("decode plant price: %w", err)
	}
	return &domain.Plant{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		Image:       d.Image,
		Price:       price,
		Quantity:    d.Quantity,
		Seller:      domain.Seller{Name: d.Seller.Name, Email: d.Seller.Email, Image: d.Seller.Image},
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}
