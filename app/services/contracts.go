package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/vipani/app/models"
)

// Collaborator contracts consumed by ProductService. The concrete
// implementations live in app/repositories, pkg/blob, pkg/search and
// pkg/bus; tests substitute fakes.

// ProductStore is the authoritative document store.
type ProductStore interface {
	Insert(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id string) (models.Product, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	Replace(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CategoryResolver maps a category id to its display name.
type CategoryResolver interface {
	Resolve(ctx context.Context, id string) (string, error)
}

// BlobStore persists binary image payloads.
type BlobStore interface {
	Store(ctx context.Context, data []byte, filename, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// SearchIndexer mirrors denormalized product snapshots. Both operations are
// idempotent.
type SearchIndexer interface {
	Upsert(ctx context.Context, id string, doc interface{}) error
	Remove(ctx context.Context, id string) error
}

// EventPublisher is a fire-and-forget emitter; it must never block or fail
// the caller.
type EventPublisher interface {
	Publish(topic string, event interface{})
}

// Upload is a file received from the client.
type Upload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ProductInput carries the writable product fields. On update, empty/zero
// values mean "leave unchanged" for title, description, price, quantity and
// profileUrl. Clients depend on this long-standing contract quirk, so it is
// kept deliberately. Category and image fields replace unconditionally when
// supplied.
type ProductInput struct {
	Title       string
	Description string
	CategoryID  string
	Price       float64
	Quantity    int
	ImageURL    string
	ProfileURL  string

	Image        *Upload
	ProfileImage *Upload
}
