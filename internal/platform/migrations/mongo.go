package migrations

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	platformmongo "github.com/plantnet/plantnet-api/internal/platform/mongo"
)

// EnsureMongoIndexes creates the indexes the document adapters rely on:
// one user per email, one order per payment, and TTL expiry of revoked tokens.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return nil
	}
	specs := map[string][]mongo.IndexModel{
		platformmongo.UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("uniq_email").SetUnique(true)},
		},
		platformmongo.OrdersCollection: {
			{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: options.Index().SetName("uniq_transaction_id").SetUnique(true)},
			{Keys: bson.D{{Key: "createdAt", Value: 1}}, Options: options.Index().SetName("created_at")},
			{Keys: bson.D{{Key: "customer.email", Value: 1}}, Options: options.Index().SetName("customer_email")},
			{Keys: bson.D{{Key: "seller.email", Value: 1}}, Options: options.Index().SetName("seller_email")},
		},
		platformmongo.PlantsCollection: {
			{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("category")},
		},
		platformmongo.RevocationsCollection: {
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetName("ttl_expires_at").SetExpireAfterSeconds(0)},
		},
	}
	for collection, models := range specs {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", collection, err)
		}
	}
	return nil
}
