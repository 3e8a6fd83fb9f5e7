package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	bookingsCollection      = "agg_booking"
	paymentsCollection      = "agg_payment"
	reviewsCollection       = "agg_review"
	propertiesCollection    = "dir_property"
	usersCollection         = "dir_user"
	propertyLocksCollection = "property_locks"
	outboxCollection        = "app_outbox"
	idempotencyCollection   = "app_idempotency"
)

type Client struct {
	DB *mongo.Database
}

func New(uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	opts := options.Client().ApplyURI(uri).SetRetryWrites(true)
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Client{DB: m.Database(database)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, nil)
}

func (c *Client) Disconnect(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		bookingsCollection: {
			{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "start", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		paymentsCollection: {
			{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: unique},
		},
		reviewsCollection: {
			{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: unique},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
	}
	for name, models := range specs {
		if _, err := c.DB.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
