package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/vipani/app/models"
)

// CategoryRepository reads the category collection owned by the
// category-management service. This service only resolves names from it;
// Insert exists for the seeder.
type CategoryRepository struct {
	col *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{col: db.Collection("categories")}
}

// Resolve maps a category id to its display name.
// Returns ErrNotFound for absent or malformed ids.
func (r *CategoryRepository) Resolve(ctx context.Context, id string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", ErrNotFound
	}

	var cat models.Category
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&cat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("categories: resolve %s: %w", id, err)
	}
	return cat.Name, nil
}

// All returns every category.
func (r *CategoryRepository) All(ctx context.Context) ([]models.Category, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("categories: find all: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Category
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("categories: decode all: %w", err)
	}
	return out, nil
}

// Insert adds a category. Used by the seeder only.
func (r *CategoryRepository) Insert(ctx context.Context, cat *models.Category) error {
	res, err := r.col.InsertOne(ctx, cat)
	if err != nil {
		return fmt.Errorf("categories: insert: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		cat.ID = id
	}
	return nil
}
