package news

import "errors"

// Sentinel errors shared by every store implementation. Handlers map these
// to HTTP statuses; the ingestion pipeline treats ErrDuplicateSlug as a
// silent skip because a concurrent insert losing the slug race is expected.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateSlug = errors.New("slug already exists")
)
