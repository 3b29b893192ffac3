package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plantnet/plantnet-api/internal/domains/users/domain"
	"github.com/plantnet/plantnet-api/internal/domains/users/ports"
	platformmongo "github.com/plantnet/plantnet-api/internal/platform/mongo"
)

var _ ports.RevocationStore = (*RevocationStore)(nil)

// RevocationStore keeps revoked token ids in a collection with a TTL index
// on expiresAt, so the server also expires entries on its own.
type RevocationStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewRevocationStore(db *mongo.Database) *RevocationStore {
	s := &RevocationStore{now: time.Now}
	if db != nil {
		s.col = db.Collection(platformmongo.RevocationsCollection)
	}
	return s
}

func (s *RevocationStore) Revoke(ctx context.Context, revocation domain.Revocation) error {
	if err := s.ensureCollection(); err != nil {
		return err
	}
	if revocation.TokenID == "" {
		return errors.New("token id is required")
	}
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": revocation.TokenID},
		bson.M{"$setOnInsert": bson.M{"email": revocation.Email, "expiresAt": revocation.ExpiresAt.UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if err := s.ensureCollection(); err != nil {
		return false, err
	}
	n, err := s.col.CountDocuments(ctx,
		bson.M{"_id": tokenID, "expiresAt": bson.M{"$gt": s.now().UTC()}},
		options.Count().SetLimit(1),
	)
	return n > 0, err
}

func (s *RevocationStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ensureCollection(); err != nil {
		return 0, err
	}
	res, err := s.col.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": now.UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *RevocationStore) ensureCollection() error {
	if s == nil || s.col == nil {
		return errors.New("mongo revocation store not configured")
	}
	return nil
}
