// Package blob stores binary image payloads and hands back opaque
// references.
//
// Three drivers are available:
//   - "gridfs": MongoDB GridFS, the default (blobs live next to the
//     primary store, refs are hex object ids)
//   - "s3":     S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//   - "local":  local filesystem, for development
//
// The store is constructed explicitly at boot via Open and injected into
// whatever needs it. There is no lazily bound global: a caller holding a
// Store can rely on it being connected, and a caller holding nil must treat
// the blob backend as unavailable.
package blob

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/vipani/config"
)

// Store is the blob backend contract.
type Store interface {
	// Store persists data and returns an opaque reference to it.
	Store(ctx context.Context, data []byte, filename, contentType string) (string, error)

	// Delete removes the blob behind ref. Deleting an absent blob is not an
	// error; the operation is idempotent.
	Delete(ctx context.Context, ref string) error

	// URL returns a public URL for ref, when the driver has one.
	URL(ref string) string
}

// Open constructs the Store selected by BLOB_DRIVER. The Mongo database is
// only required by the gridfs driver; the others ignore it.
func Open(ctx context.Context, db *mongo.Database) (Store, error) {
	switch driver := config.BlobDriver(); driver {
	case "gridfs":
		if db == nil {
			return nil, fmt.Errorf("blob: gridfs driver requires a mongo database")
		}
		return newGridFSStore(db, config.BlobBucket())
	case "s3":
		return newS3Store(ctx)
	case "local":
		return newLocalStore(config.BlobLocalRoot(), config.BlobURL()), nil
	default:
		return nil, fmt.Errorf("blob: unknown driver %q", driver)
	}
}
