package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Transactor runs units of work in a multi-document transaction. The server
// must be a replica set or sharded cluster.
type Transactor struct {
	client *mongo.Client
}

func NewTransactor(db *mongo.Database) *Transactor {
	if db == nil {
		return &Transactor{}
	}
	return &Transactor{client: db.Client()}
}

// WithinTransaction hands fn a session context; collection calls made with it
// join the transaction. Transient transaction errors are retried by the driver.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if t == nil || t.client == nil {
		return errors.New("mongo transactor not configured")
	}
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}
	sess, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(context.Background())

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txOpts)
	return err
}
