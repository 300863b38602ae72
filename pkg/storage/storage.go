package storage

import (
	"context"
)

// Store is the remote object store holding uploaded artifacts for the
// OCR service to read. Implementations must be safe for concurrent use
// by multiple workers.
type Store interface {
	Upload(ctx context.Context, key, path string) error
	Delete(ctx context.Context, key string) error
}
