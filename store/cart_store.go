// Package store provides the MongoDB-backed persistence used by the cart
// engine and the catalog cache.
package store

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

// CartStore persists one cart document per user in the carts collection.
type CartStore struct {
	coll *mongo.Collection
	log  zerolog.Logger
}

// NewCartStore returns a store over the database's carts collection.
func NewCartStore(db *mongo.Database, log zerolog.Logger) *CartStore {
	return &CartStore{coll: db.Collection("carts"), log: log}
}

// Save upserts the cart snapshot keyed by user id.
func (s *CartStore) Save(ctx context.Context, cart *models.Cart) error {
	update := bson.M{"$set": bson.M{"items": cart.Items}}
	opts := options.Update().SetUpsert(true)
	_, err := s.coll.UpdateOne(ctx, bson.M{"user_id": cart.UserID}, update, opts)
	return err
}

// Load returns the user's cart. Best-effort semantics: a missing document or
// a read failure yields an empty cart, never an error surfaced to the caller;
// failures other than a plain miss are logged.
func (s *CartStore) Load(ctx context.Context, userID primitive.ObjectID) *models.Cart {
	var cart models.Cart
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			s.log.Error().Err(err).Str("user_id", userID.Hex()).Msg("cart load failed, treating as empty")
		}
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}
	cart.UserID = userID
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart
}
