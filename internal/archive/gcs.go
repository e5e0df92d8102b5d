package archive

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// GCSProvider archives page bodies to a Google Cloud Storage bucket.
// Authentication uses Application Default Credentials.
type GCSProvider struct {
	client *storage.Client
	bucket string
}

// NewGCSProvider initializes the client and verifies bucket access so a
// misconfigured archive fails at startup rather than mid-crawl.
func NewGCSProvider(ctx context.Context, bucket string) (*GCSProvider, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("access gcs bucket %q: %w", bucket, err)
	}

	return &GCSProvider{client: client, bucket: bucket}, nil
}

// Save uploads the page body to the bucket.
func (p *GCSProvider) Save(ctx context.Context, objectName string, data []byte) error {
	wc := p.client.Bucket(p.bucket).Object(objectName).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return fmt.Errorf("write gcs object %s: %w", objectName, err)
	}
	// Close finalizes the upload; an error here means the object was not
	// committed.
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close gcs writer for %s: %w", objectName, err)
	}
	return nil
}

// Close releases the underlying client.
func (p *GCSProvider) Close() error {
	return p.client.Close()
}
