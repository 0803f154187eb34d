package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Seller identifies the shop owner who listed a product.
// ID is fixed at creation time and never changes afterwards.
type Seller struct {
	ID             string `bson:"id" json:"id"`
	ProfileURL     string `bson:"profileUrl,omitempty" json:"profileUrl,omitempty"`
	ProfileImageID string `bson:"profileImageId,omitempty" json:"profileImageId,omitempty"`
}

// Product is the canonical document stored in MongoDB.
//
// Image and ImageID are mutually exclusive: Image holds an external URL,
// ImageID holds a blob-store reference for an uploaded file. At most one is
// set at any time.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CategoryID  primitive.ObjectID `bson:"category_id" json:"category_id"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	ImageID     string             `bson:"imageId,omitempty" json:"imageId,omitempty"`
	Seller      Seller             `bson:"seller" json:"seller"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// View returns the denormalized representation served to clients and fanned
// out to the search index and the event bus: the raw category reference is
// joined with its resolved display name.
func (p Product) View(categoryName string) ProductView {
	return ProductView{Product: p, Category: categoryName}
}

// ProductView is a Product enriched with the resolved category name.
type ProductView struct {
	Product  `bson:",inline"`
	Category string `json:"category"`
}
