package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

// CatalogSource feeds the catalog cache from the products collection.
type CatalogSource struct {
	coll *mongo.Collection
}

// NewCatalogSource returns a source over the database's products collection.
func NewCatalogSource(db *mongo.Database) *CatalogSource {
	return &CatalogSource{coll: db.Collection("products")}
}

// Products fetches the full product list ordered by public id.
func (s *CatalogSource) Products(ctx context.Context) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
