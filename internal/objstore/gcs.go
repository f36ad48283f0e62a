package objstore

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	derrors "github.com/deltakit/deltakit/internal/errors"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// gcsBackend implements Backend over Google Cloud Storage, authenticating
// via Application Default Credentials per spec.md §6.
type gcsBackend struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

func newGCSBackend(ctx context.Context, uri ParsedURI, opts Options) (*gcsBackend, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, derrors.New(ErrConfigError, "failed to construct GCS client", err)
	}
	return &gcsBackend{client: client, bucket: client.Bucket(uri.Bucket)}, nil
}

func (g *gcsBackend) Kind() string { return "gcs" }

func (g *gcsBackend) ListPrefix(ctx context.Context, prefix string, fn func(ObjectMeta) error) error {
	it := g.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return classifyGCSErr(err, prefix)
		}
		if err := fn(ObjectMeta{Path: attrs.Name, Size: attrs.Size}); err != nil {
			return err
		}
	}
}

func (g *gcsBackend) GetRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	r, err := g.bucket.Object(key).NewRangeReader(ctx, offset, length)
	if err != nil {
		return nil, classifyGCSErr(err, key)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, classifyGCSErr(err, key)
	}
	return data, nil
}

func (g *gcsBackend) GetAll(ctx context.Context, key string) ([]byte, error) {
	r, err := g.bucket.Object(key).NewReader(ctx)
	if err != nil {
		return nil, classifyGCSErr(err, key)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, classifyGCSErr(err, key)
	}
	return data, nil
}

func (g *gcsBackend) Head(ctx context.Context, key string) (int64, error) {
	attrs, err := g.bucket.Object(key).Attrs(ctx)
	if err != nil {
		return 0, classifyGCSErr(err, key)
	}
	return attrs.Size, nil
}

func (g *gcsBackend) Close() error { return g.client.Close() }

func classifyGCSErr(err error, key string) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return derrors.New(ErrNotFound, "object not found", err).AddContext("key", key)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 403:
			return derrors.New(ErrForbidden, "access denied", err).AddContext("key", key)
		case apiErr.Code == 404:
			return derrors.New(ErrNotFound, "object not found", err).AddContext("key", key)
		case apiErr.Code == 429 || apiErr.Code >= 500:
			return derrors.New(ErrNetwork, "transient GCS error", err).AddContext("key", key)
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return derrors.New(ErrNetwork, "transient GCS network error", err).AddContext("key", key)
	}
	if strings.Contains(err.Error(), "timeout") {
		return derrors.New(ErrNetwork, "transient GCS network error", err).AddContext("key", key)
	}
	return derrors.New(ErrMalformed, "GCS request failed", err).AddContext("key", key)
}
