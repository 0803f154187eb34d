package seeders

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/vipani/app/models"
	"github.com/shashiranjanraj/vipani/app/repositories"
)

func init() {
	Register("categories", SeedCategories)
}

// SeedCategories inserts the default product categories. It is safe to run
// repeatedly: a non-empty collection is left untouched.
func SeedCategories(ctx context.Context, db *mongo.Database) error {
	repo := repositories.NewCategoryRepository(db)

	existing, err := repo.All(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	names := []string{
		"Furniture",
		"Electronics",
		"Clothing",
		"Books",
		"Home & Kitchen",
		"Sports & Outdoors",
	}
	for _, name := range names {
		if err := repo.Insert(ctx, &models.Category{Name: name}); err != nil {
			return err
		}
	}
	return nil
}
