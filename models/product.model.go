package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. ID is the public numeric id used by the
// storefront and admin API; the Mongo _id stays internal.
type Product struct {
	OID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID          int                `bson:"id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Unit        string             `bson:"unit" json:"unit"`
	Image       string             `bson:"image" json:"image"`
	Category    string             `bson:"category" json:"category"`
	Stock       int                `bson:"stock" json:"stock"`
}
