package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one line of a cart. The product id is the canonical string form
// of the catalog's public numeric id; name, price and image are snapshotted at
// add time so the cart renders without a catalog round trip.
type CartItem struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Name      string  `bson:"name" json:"name"`
	Price     float64 `bson:"price" json:"price"`
	Image     string  `bson:"image" json:"image"`
	Quantity  int     `bson:"quantity" json:"quantity"`
}

// Cart represents a user's shopping cart. Items keep insertion order and hold
// at most one line per product id.
type Cart struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items  []CartItem         `bson:"items" json:"items"`
}

// Find returns a pointer to the line with the given product id, or nil.
func (c *Cart) Find(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Quantity returns the quantity in cart for a product, 0 when absent.
func (c *Cart) Quantity(productID string) int {
	if item := c.Find(productID); item != nil {
		return item.Quantity
	}
	return 0
}
