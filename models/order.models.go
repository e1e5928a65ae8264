package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order is a placed order: the cart snapshot at checkout time plus the totals
// computed server-side under the pricing policy in effect.
type Order struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items    []CartItem         `bson:"items" json:"items"`
	Subtotal float64            `bson:"subtotal" json:"subtotal"`
	Discount float64            `bson:"discount" json:"discount"`
	Tax      float64            `bson:"tax" json:"tax"`
	Total    float64            `bson:"total" json:"total"`
	Date     time.Time          `bson:"date" json:"date"`
}
