package blob

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/shashiranjanraj/vipani/config"
)

// s3Store is the S3-compatible blob driver.
// Works with AWS S3, MinIO, DigitalOcean Spaces, Cloudflare R2.
type s3Store struct {
	client  *s3.Client
	bucket  string
	prefix  string
	baseURL string
}

func newS3Store(ctx context.Context) (*s3Store, error) {
	bucket := config.BlobS3Bucket()
	region := config.BlobS3Region()
	key := config.BlobS3Key()
	secret := config.BlobS3Secret()
	endpoint := config.BlobS3Endpoint() // leave empty for real AWS
	baseURL := strings.TrimRight(config.BlobS3URL(), "/")

	if bucket == "" {
		return nil, fmt.Errorf("blob/s3: S3_BUCKET is not configured")
	}

	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(region),
	}

	// Static credentials (required for MinIO / R2 / Spaces)
	if key != "" && secret != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("blob/s3: load config: %w", err)
	}

	clientOpts := []func(*s3.Options){}
	if endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // required for MinIO
		})
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &s3Store{
		client:  s3.NewFromConfig(cfg, clientOpts...),
		bucket:  bucket,
		prefix:  strings.Trim(config.BlobBucket(), "/"),
		baseURL: baseURL,
	}, nil
}

func (s *s3Store) Store(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	ref := s.prefix + "/" + uuid.NewString() + path.Ext(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(ref),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("blob/s3: put %s: %w", ref, err)
	}
	return ref, nil
}

// Delete removes the object behind ref. S3 treats deleting an absent key as
// success.
func (s *s3Store) Delete(ctx context.Context, ref string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("blob/s3: delete %s: %w", ref, err)
	}
	return nil
}

func (s *s3Store) URL(ref string) string {
	return s.baseURL + "/" + strings.TrimLeft(ref, "/")
}
