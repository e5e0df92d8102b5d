// Package archive defines the blob provider used to keep raw copies of
// fetched observation pages. The abstraction keeps the crawler independent
// of a specific backend (GCS, local filesystem, or nothing at all).
package archive

import (
	"context"
)

// Provider abstracts the operation of saving a raw page body under a key.
type Provider interface {
	Save(ctx context.Context, objectName string, data []byte) error
}

// NoOpProvider discards every page. It is the default: archival is an
// opt-in diagnostic aid, not part of the crawl contract.
type NoOpProvider struct{}

// Save for NoOpProvider does nothing and always returns nil.
func (n *NoOpProvider) Save(_ context.Context, _ string, _ []byte) error {
	return nil
}
