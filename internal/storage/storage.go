package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	cfg "github.com/usedgoods/marketplace/internal/config"
)

var (
	ErrInvalidHandle = errors.New("invalid file handle")
)

// Storage defines the attachment store used for listing images and avatars.
//
// Uploads arrive in two steps: the transport writes the raw upload to the
// staging area with Stage and hands the returned temp handle to the service,
// which either promotes it with Save or purges it with Discard.
type Storage interface {
	// Stage writes r to the staging area and returns its temp handle
	Stage(ctx context.Context, filename string, r io.Reader) (string, error)

	// Discard removes a staged file. Missing files are ignored.
	Discard(ctx context.Context, handle string) error

	// Save moves a staged file to permanent storage and returns its stored id
	Save(ctx context.Context, handle string) (string, error)

	// Delete removes a stored file. Missing files are ignored.
	Delete(ctx context.Context, id string) error

	// List returns the ids of every stored file
	List(ctx context.Context) ([]string, error)

	// URL returns the address clients use to fetch the file
	URL(id string) string
}

// New creates the storage driver selected by config.
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case cfg.StorageDriverDisk:
		slog.Info("initializing disk storage", "root", c.StorageRoot)
		return NewDiskStorage(c.StorageRoot, c.AppURL+"/images")
	case cfg.StorageDriverS3:
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(context.Background(), S3Config{
			Region:        c.S3Region,
			Bucket:        c.S3Bucket,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			Endpoint:      c.S3Endpoint,
			StagingRoot:   c.StorageRoot,
			PresignExpiry: c.S3PresignExpiryPublic,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
