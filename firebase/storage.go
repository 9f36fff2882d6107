package firebase

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"

	"promoshow/utils"
)

// BlobStore abstracts the object store holding promotion images.
type BlobStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) error
	PublicURL(ctx context.Context, objectPath string) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

// StorageBlobStore is the Cloud Storage implementation behind the Firebase app.
type StorageBlobStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
	logger     *zap.Logger
}

func NewStorageBlobStore(ctx context.Context, app *firebase.App, bucketName string, logger *zap.Logger) (*StorageBlobStore, error) {
	if bucketName == "" {
		return nil, errors.New("FIREBASE_STORAGE_BUCKET not set")
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("bucket %s: %w", bucketName, err)
	}

	return &StorageBlobStore{bucket: bucket, bucketName: bucketName, logger: utils.OrNop(logger)}, nil
}

func (s *StorageBlobStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) error {
	objectPath = sanitizeObjectPath(objectPath)
	obj := s.bucket.Object(objectPath)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return fmt.Errorf("upload %s: %w", objectPath, err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload of %s: %w", objectPath, err)
	}

	// Make object publicly readable so the URL works without authentication
	if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		s.logger.Warn("failed to set public ACL", zap.String("path", objectPath), zap.Error(err))
	}

	return nil
}

func (s *StorageBlobStore) PublicURL(ctx context.Context, objectPath string) (string, error) {
	objectPath = sanitizeObjectPath(objectPath)
	if _, err := s.bucket.Object(objectPath).Attrs(ctx); err != nil {
		return "", fmt.Errorf("resolve %s: %w", objectPath, err)
	}
	return utils.PublicObjectURL(s.bucketName, objectPath), nil
}

func (s *StorageBlobStore) Delete(ctx context.Context, objectPath string) error {
	objectPath = sanitizeObjectPath(objectPath)
	if err := s.bucket.Object(objectPath).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectPath, err)
	}

	s.logger.Info("deleted object", zap.String("path", objectPath), zap.String("bucket", s.bucketName))
	return nil
}
