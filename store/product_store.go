package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"go-storefront/models"
)

// ProductStore reads and adjusts product rows by public numeric id.
type ProductStore struct {
	coll *mongo.Collection
}

// NewProductStore returns a store over the database's products collection.
func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{coll: db.Collection("products")}
}

// FindByID returns the product with the given public id.
func (s *ProductStore) FindByID(ctx context.Context, id int) (*models.Product, error) {
	var product models.Product
	if err := s.coll.FindOne(ctx, bson.M{"id": id}).Decode(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock subtracts qty from the product's stock in a single
// conditional update, so concurrent checkouts cannot push it negative. The
// boolean reports whether a row matched with enough stock remaining.
func (s *ProductStore) DecrementStock(ctx context.Context, id, qty int) (bool, error) {
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// RestoreStock adds qty back after a partially applied checkout.
func (s *ProductStore) RestoreStock(ctx context.Context, id, qty int) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$inc": bson.M{"stock": qty}},
	)
	return err
}
