package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plantnet/plantnet-api/internal/domains/users/domain"
	"github.com/plantnet/plantnet-api/internal/domains/users/ports"
	platformmongo "github.com/plantnet/plantnet-api/internal/platform/mongo"
)

var _ ports.Repository = (*Repository)(nil)

// Repository stores users in the users collection; email carries a unique index.
type Repository struct {
	col *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	if db == nil {
		return &Repository{}
	}
	return &Repository{col: db.Collection(platformmongo.UsersCollection)}
}

type userDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Email       string             `bson:"email"`
	Name        string             `bson:"name"`
	Image       string             `bson:"image"`
	Role        string             `bson:"role"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	LastLoginAt time.Time          `bson:"lastLoginAt"`
}

// UpsertOnLogin issues one upserting update: lastLoginAt is always set, the
// remaining fields only on insert.
func (r *Repository) UpsertOnLogin(ctx context.Context, candidate *domain.User, now time.Time) (*ports.UpsertResult, error) {
	if err := r.ensureCollection(); err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, errors.New("user is nil")
	}
	filter := bson.M{"email": candidate.Email}
	update := bson.M{
		"$set": bson.M{"lastLoginAt": now.UTC()},
		"$setOnInsert": bson.M{
			"name":      candidate.Name,
			"image":     candidate.Image,
			"role":      string(candidate.Role),
			"status":    string(candidate.Status),
			"createdAt": candidate.CreatedAt.UTC(),
		},
	}
	res, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, err
	}
	user, err := r.GetByEmail(ctx, candidate.Email)
	if err != nil {
		return nil, err
	}
	return &ports.UpsertResult{
		User:     user,
		Inserted: res.UpsertedID != nil,
		Matched:  res.MatchedCount,
		Modified: res.ModifiedCount,
	}, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := r.ensureCollection(); err != nil {
		return nil, err
	}
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *Repository) SetStatus(ctx context.Context, email string, role domain.Role, status domain.Status) (*domain.User, error) {
	return r.findAndSet(ctx, bson.M{"email": email, "role": string(role)}, bson.M{"status": string(status)})
}

func (r *Repository) SetRole(ctx context.Context, email string, role domain.Role, status domain.Status) (*domain.User, error) {
	return r.findAndSet(ctx, bson.M{"email": email}, bson.M{"role": string(role), "status": string(status)})
}

func (r *Repository) findAndSet(ctx context.Context, filter, set bson.M) (*domain.User, error) {
	if err := r.ensureCollection(); err != nil {
		return nil, err
	}
	var doc userDocument
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *Repository) ListExcluding(ctx context.Context, email string) ([]*domain.User, error) {
	if err := r.ensureCollection(); err != nil {
		return nil, err
	}
	cur, err := r.col.Find(ctx, bson.M{"email": bson.M{"$ne": email}}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	if err := r.ensureCollection(); err != nil {
		return 0, err
	}
	return r.col.EstimatedDocumentCount(ctx)
}

func (r *Repository) ensureCollection() error {
	if r == nil || r.col == nil {
		return errors.New("mongo user repository not configured")
	}
	return nil
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:          d.ID.Hex(),
		Email:       d.Email,
		Name:        d.Name,
		Image:       d.Image,
		Role:        domain.Role(d.Role),
		Status:      domain.Status(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
		LastLoginAt: d.LastLoginAt.UTC(),
	}
}
