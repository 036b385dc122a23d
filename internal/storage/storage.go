// Package storage stores uploaded media in S3-compatible object storage or on local disk.
package storage

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/huzidev/dev-forum-api/internal/config"

	"github.com/google/uuid"
)

// ObjectStore persists public media objects.
type ObjectStore interface {
	// Put stores body under key and returns its public URL.
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectKey builds the key of an upload: uploads/<unix millis>-<filename>.
// Filenames are reduced to a safe character set; an empty name gets a random one.
func ObjectKey(filename string, now time.Time) string {
	name := unsafeKeyChars.ReplaceAllString(path.Base(strings.TrimSpace(filename)), "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		name = uuid.NewString()
	}
	return fmt.Sprintf("uploads/%d-%s", now.UnixMilli(), name)
}

// WithExt replaces the extension of key.
func WithExt(key, ext string) string {
	return strings.TrimSuffix(key, path.Ext(key)) + ext
}

// New returns the store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewSpacesStore(ctx, SpacesConfig{
			Endpoint: cfg.SpacesEndpoint,
			Region:   cfg.SpacesRegion,
			Bucket:   cfg.SpacesBucket,
			Key:      cfg.SpacesKey,
			Secret:   cfg.SpacesSecret,
		})
	case "", "local":
		return NewLocalStore(cfg.MediaRoot, cfg.MediaBaseURL)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
