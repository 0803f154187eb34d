package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/vipani/config"
)

// gridFSStore keeps blobs in a GridFS bucket inside the same MongoDB
// deployment as the product documents. References are hex file ids.
type gridFSStore struct {
	bucket  *gridfs.Bucket
	baseURL string
}

func newGridFSStore(db *mongo.Database, bucketName string) (*gridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("blob/gridfs: bucket %q: %w", bucketName, err)
	}
	return &gridFSStore{
		bucket:  bucket,
		baseURL: strings.TrimRight(config.BlobURL(), "/"),
	}, nil
}

func (s *gridFSStore) Store(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetWriteDeadline(deadline)
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	id, err := s.bucket.UploadFromStream(filename, bytes.NewReader(data), opts)
	if err != nil {
		return "", fmt.Errorf("blob/gridfs: upload %s: %w", filename, err)
	}
	return id.Hex(), nil
}

func (s *gridFSStore) Delete(ctx context.Context, ref string) error {
	id, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return fmt.Errorf("blob/gridfs: bad ref %q: %w", ref, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetWriteDeadline(deadline)
	}

	if err := s.bucket.Delete(id); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil
		}
		return fmt.Errorf("blob/gridfs: delete %s: %w", ref, err)
	}
	return nil
}

func (s *gridFSStore) URL(ref string) string {
	return s.baseURL + "/" + ref
}
