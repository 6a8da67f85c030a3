// Package storage gives read access to job photos kept in S3-compatible
// object storage. Crews upload the photos; customers only ever see them
// through short-lived presigned links.
package storage

import (
	"context"
	"time"
)

// Photo is one stored job photo with a presigned download link.
type Photo struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// PresignedURL contains the URL and metadata for a presigned download.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PhotoStore lists photos and signs download links.
type PhotoStore interface {
	// ListPhotos returns the images stored under prefix, oldest first.
	ListPhotos(ctx context.Context, bucket, prefix string) ([]Photo, error)

	// GenerateDownloadURL creates a presigned URL for downloading a file.
	GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*PresignedURL, error)
}

// Disabled is the PhotoStore used when object storage is not configured.
type Disabled struct{}

func (Disabled) ListPhotos(context.Context, string, string) ([]Photo, error) {
	return []Photo{}, nil
}

func (Disabled) GenerateDownloadURL(context.Context, string, string) (*PresignedURL, error) {
	return nil, ErrDisabled
}
