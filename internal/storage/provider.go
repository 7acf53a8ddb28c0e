// Package storage defines the blob provider used for uploaded article and
// story images. By using an interface, we decouple the upload handlers from
// a specific backend, allowing local disk in development and GCS in
// production.
package storage

import "context"

// Provider persists an uploaded image and returns its public URL.
type Provider interface {
	// Save writes data under objectName and returns the URL the stored
	// image is served from.
	Save(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

// NoOpProvider discards uploads. Useful in tests and when running without
// any image backend.
type NoOpProvider struct{}

// Save for NoOpProvider discards the data and returns a placeholder URL.
func (NoOpProvider) Save(_ context.Context, objectName string, _ []byte, _ string) (string, error) {
	return "noop://" + objectName, nil
}
