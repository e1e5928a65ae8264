package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account. PasswordHash is a bcrypt hash and is
// never serialized into API responses.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	IsAdmin      bool               `bson:"is_admin" json:"is_admin"`
}
