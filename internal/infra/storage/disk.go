// Package storage puts uploaded artwork images on a local directory or an
// S3-compatible bucket behind one small interface.
package storage

import (
	"context"
	"fmt"
	"io"

	"arvista/config"
)

type Disk interface {
	Name() string
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// Default is the disk used by upload handlers; set by Init.
var Default Disk

// Init picks the disk named by STORAGE_DISK ("local" or "s3").
func Init(ctx context.Context) error {
	switch config.STORAGE_DISK {
	case "", "local":
		Default = NewLocalDisk(config.STORAGE_LOCAL_ROOT, config.STORAGE_URL)
	case "s3":
		d, err := NewS3Disk(ctx, S3Options{
			Bucket:   config.S3_BUCKET,
			Region:   config.S3_REGION,
			Key:      config.S3_KEY,
			Secret:   config.S3_SECRET,
			Endpoint: config.S3_ENDPOINT,
			BaseURL:  config.S3_URL,
		})
		if err != nil {
			return err
		}
		Default = d
	default:
		return fmt.Errorf("storage: unknown disk %q", config.STORAGE_DISK)
	}
	return nil
}
