package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"booking_portal_backend/platform/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	// PresignedURLTTL is the default expiration time for presigned URLs (15 minutes).
	PresignedURLTTL = 15 * time.Minute
)

// ErrDisabled is returned when object storage is not configured.
var ErrDisabled = errors.New("object storage is not configured")

// MinIOService implements PhotoStore using MinIO.
type MinIOService struct {
	client *minio.Client
}

// NewMinIOService creates a new MinIO storage service.
func NewMinIOService(cfg config.MinIOConfig) (*MinIOService, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, ErrDisabled
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOService{client: client}, nil
}

// EnsureBucketExists creates the bucket if it doesn't exist.
func (s *MinIOService) EnsureBucketExists(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	return nil
}

// ListPhotos lists the image objects under prefix and signs a download URL for each.
func (s *MinIOService) ListPhotos(ctx context.Context, bucket, prefix string) ([]Photo, error) {
	photos := make([]Photo, 0)
	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, obj.Err)
		}
		contentType := ContentTypeForKey(obj.Key)
		if !IsImageContentType(contentType) {
			continue
		}

		signed, err := s.GenerateDownloadURL(ctx, bucket, obj.Key)
		if err != nil {
			return nil, err
		}
		photos = append(photos, Photo{
			Key:          obj.Key,
			URL:          signed.URL,
			ContentType:  contentType,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ExpiresAt:    signed.ExpiresAt,
		})
	}

	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].LastModified.Before(photos[j].LastModified)
	})
	return photos, nil
}

// GenerateDownloadURL creates a presigned URL for downloading a file.
func (s *MinIOService) GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*PresignedURL, error) {
	expiresAt := time.Now().Add(PresignedURLTTL)

	presignedURL, err := s.client.PresignedGetObject(ctx, bucket, fileKey, PresignedURLTTL, make(url.Values))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	return &PresignedURL{
		URL:       presignedURL.String(),
		FileKey:   fileKey,
		ExpiresAt: expiresAt,
	}, nil
}

var _ PhotoStore = (*MinIOService)(nil)
var _ PhotoStore = Disabled{}
