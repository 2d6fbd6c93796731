package repositories

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"cloud.google.com/go/storage"
)

// downloadURLPath extracts the object path from a Firebase Storage download
// URL ("https://firebasestorage.googleapis.com/v0/b/<bucket>/o/<path>?...").
var downloadURLPath = regexp.MustCompile(`/o/(.+?)\?`)

// StorageBlobRepository deletes uploaded attachments from the default bucket.
// It implements cleanup.BlobStore.
type StorageBlobRepository struct {
	bucket *storage.BucketHandle
}

// NewStorageBlobRepository creates a new StorageBlobRepository.
func NewStorageBlobRepository(bucket *storage.BucketHandle) *StorageBlobRepository {
	return &StorageBlobRepository{bucket: bucket}
}

// DeleteByURL removes the object a download URL points at.
func (r *StorageBlobRepository) DeleteByURL(ctx context.Context, rawURL string) error {
	path, err := objectPath(rawURL)
	if err != nil {
		return err
	}
	if err := r.bucket.Object(path).Delete(ctx); err != nil {
		return fmt.Errorf("delete object %s: %w", path, err)
	}
	return nil
}

// objectPath pulls the URL-encoded object path out of a download URL.
func objectPath(rawURL string) (string, error) {
	m := downloadURLPath.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("no object path in url %q", rawURL)
	}
	path, err := url.PathUnescape(m[1])
	if err != nil {
		return "", fmt.Errorf("unescape object path %q: %w", m[1], err)
	}
	return path, nil
}
