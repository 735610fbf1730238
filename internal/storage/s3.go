package storage

import (
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/config"
	"github.com/pageza/mealshare/backend/internal/logging"
)

// S3API is the subset of the S3 client used by S3Store
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps images in an S3 bucket. The asset id is the object key.
type S3Store struct {
	client  S3API
	bucket  string
	baseURL string
}

var _ BlobStore = (*S3Store)(nil)

// NewS3Store creates a store backed by the configured bucket
func NewS3Store(cfg *config.S3Config) *S3Store {
	return &S3Store{
		client:  cfg.Client,
		bucket:  cfg.BucketName,
		baseURL: cfg.PublicBaseURL,
	}
}

// NewS3StoreWithClient is used by tests to inject a fake S3 client
func NewS3StoreWithClient(client S3API, bucket, baseURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, baseURL: baseURL}
}

// Upload stores the file under folder/proposed-id (a random id when none is proposed)
func (s *S3Store) Upload(ctx context.Context, file Upload, opts UploadOptions) (Asset, error) {
	id := opts.ProposedID
	if id == "" {
		id = uuid.NewString()
	}
	key := AssetKey(opts.Folder, id)
	if ext := path.Ext(file.Filename); ext != "" && path.Ext(key) == "" {
		key += ext
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file.Body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return Asset{}, fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := s.baseURL + "/" + key
	logging.Debug().Str("asset_id", key).Str("url", url).Msg("uploaded asset")
	return Asset{URL: url, AssetID: key}, nil
}

// Delete removes the object. S3 reports success for missing keys.
func (s *S3Store) Delete(ctx context.Context, assetID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(assetID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from S3: %w", assetID, err)
	}
	return nil
}
