package ports

import (
	"context"
	"io"
)

// Upstream is the authenticated request layer in front of the backend REST
// API. An empty credential sends the request unauthenticated; otherwise the
// bearer credential is attached to the Authorization header. Payloads are
// passed through verbatim; the gateway never interprets resource fields.
type Upstream interface {
	Get(ctx context.Context, path, credential string) ([]byte, error)
	Post(ctx context.Context, path, credential string, body any) ([]byte, error)
	Put(ctx context.Context, path, credential string, body any) ([]byte, error)
	Delete(ctx context.Context, path, credential string) ([]byte, error)

	// Download streams a binary response (trade document PDFs). The caller
	// must close the reader. The second return is the content type.
	Download(ctx context.Context, path, credential string) (io.ReadCloser, string, error)
}
