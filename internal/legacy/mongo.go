package legacy

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection is where the legacy storefront looks up purchased courses.
const DefaultCollection = "courses"

type courseDocument struct {
	UID         string               `bson:"uid"`
	CourseID    string               `bson:"courseId"`
	BundleID    string               `bson:"bundleId"`
	Amount      primitive.Decimal128 `bson:"amount"`
	PaymentType string               `bson:"paymentType"`
	Coupon      *string              `bson:"coupon"`
	CreatedAt   time.Time            `bson:"createdAt"`
}

func toDocument(rec Record, now time.Time) (courseDocument, error) {
	amount, err := primitive.ParseDecimal128(rec.Amount.StringFixed(2))
	if err != nil {
		return courseDocument{}, fmt.Errorf("convert amount %s: %w", rec.Amount, err)
	}
	doc := courseDocument{
		UID:         rec.UID,
		CourseID:    rec.CourseID,
		BundleID:    rec.BundleID,
		Amount:      amount,
		PaymentType: rec.PaymentType,
		CreatedAt:   now.UTC(),
	}
	if rec.Coupon != "" {
		coupon := rec.Coupon
		doc.Coupon = &coupon
	}
	return doc, nil
}

// MongoStore writes legacy purchase records into a MongoDB collection.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoStore{collection: db.Collection(collection)}
}

func (s *MongoStore) RecordPurchase(ctx context.Context, rec Record) error {
	doc, err := toDocument(rec, time.Now())
	if err != nil {
		return err
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert legacy course: %w", err)
	}
	return nil
}

// Connect opens a client and verifies it with a ping. The caller owns the returned
// client and must Disconnect it.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(timeoutCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(timeoutCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, client.Database(dbName), nil
}
