package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is an account looked up while verifying a bearer token. Account
// issuance and management happen outside this service.
type User struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	Email  string             `bson:"email" json:"email"`
	Role   string             `bson:"role" json:"role"`
	Active bool               `bson:"isActive" json:"isActive"`
}

// Identity is the verified caller attached to a request after authentication.
type Identity struct {
	UserID string
	Role   string
}
