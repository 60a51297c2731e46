package client

import (
	"context"
	"errors"
	"io"
)

// ErrStorageUnavailable wraps network or service failures from the object
// store. Callers propagate it; retry policy lives outside this service.
var ErrStorageUnavailable = errors.New("image storage unavailable")

// ImageClient stores profile images in a remote blob store and resolves
// their durable URLs. URL is pure: the address is a deterministic function
// of bucket and object name, never read back from storage.
type ImageClient interface {
	Upload(ctx context.Context, r io.Reader, name, contentType string) (string, error)
	URL(name string) string
}
