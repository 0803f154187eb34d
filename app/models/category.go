package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category maps a category id to its display name. Categories are owned by
// the category-management service; this service only reads them.
type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}
