package store

import (
	"context"
	"errors"
)

// ErrObjectNotExist is returned by Get for paths with no stored object.
var ErrObjectNotExist = errors.New("object does not exist")

// ErrVersionConflict is returned by conditional writes when the stored
// version no longer matches the version the caller read.
var ErrVersionConflict = errors.New("version conflict: document was modified concurrently")

// ObjectStore is the durable blob backend: opaque bytes keyed by a
// slash-separated logical path. No multi-key atomicity is assumed.
type ObjectStore interface {
	Has(ctx context.Context, path string) (bool, error)
	Get(ctx context.Context, path string) ([]byte, error)
	Put(ctx context.Context, path string, data []byte) error
}

// ConditionalPutter is implemented by backends that can reject lost updates.
// expect is the version the caller read (0 for a path it saw absent); the
// write stores expect+1 or fails with ErrVersionConflict.
type ConditionalPutter interface {
	PutIf(ctx context.Context, path string, data []byte, expect int64) error
}
