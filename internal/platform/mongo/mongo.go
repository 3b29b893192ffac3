// Package mongo connects to the plantNet document store.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared by adapters and index migrations.
const (
	PlantsCollection          = "plants"
	OrdersCollection          = "orders"
	RefundedIntentsCollection = "refunded_intents"
	UsersCollection           = "users"
	RevocationsCollection     = "token_revocations"
)

// Connect dials MongoDB, pings the primary and returns the named database.
// The cleanup disconnects the client.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, func(), error) {
	if strings.TrimSpace(uri) == "" {
		return nil, nil, errors.New("mongodb URI is empty")
	}
	if strings.TrimSpace(database) == "" {
		return nil, nil, errors.New("mongodb database name is empty")
	}
	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(dialCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(shutdownCtx)
	}
	return client.Database(database), cleanup, nil
}

// ParseObjectID converts a hex id; malformed ids report ok=false so callers
// can answer "not found" rather than failing.
func ParseObjectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}
