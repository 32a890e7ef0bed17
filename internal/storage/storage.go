// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider.
package storage

import "context"

// ImageMeta describes a stored image object.
type ImageMeta struct {
	Width     int
	Height    int
	Format    string
	SizeBytes int64
}

// Variant is a processed derivative of an uploaded image (compressed copy,
// thumbnail) produced by the store's processing pipeline, when it has one.
type Variant struct {
	URL string
	ImageMeta
}

// PutResult is what the store reports after ingesting a picture.
type PutResult struct {
	// URL is the public URL of the stored original.
	URL string
	// Original holds the metadata of the unprocessed image.
	Original ImageMeta
	// Variants lists processed derivatives in pipeline order. Empty when the
	// backend performs no processing.
	Variants []Variant
}

// Store is the interface for uploading and removing picture objects.
type Store interface {
	// PutPicture uploads the local file under key and reports the result.
	PutPicture(ctx context.Context, key string, localPath string) (*PutResult, error)
	// Delete removes an object identified by key or by its public URL.
	Delete(ctx context.Context, keyOrURL string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
