// Package objstore is deltakit's Object Reader (spec.md §4.1): a
// backend-polymorphic, read-only capability set over {local, S3, GCS,
// Azure}, with bounded retry on transient failures. No operation in this
// package ever creates, modifies, or deletes an object.
package objstore

import (
	"context"

	"github.com/deltakit/deltakit/internal/errors"
)

var (
	ErrConfigError  = errors.MustNewCode("objstore.config_error", errors.KindConfigError)
	ErrNotFound     = errors.MustNewCode("objstore.not_found", errors.KindIoError)
	ErrForbidden    = errors.MustNewCode("objstore.forbidden", errors.KindIoError)
	ErrNetwork      = errors.MustNewCode("objstore.network", errors.KindIoError)
	ErrMalformed    = errors.MustNewCode("objstore.malformed", errors.KindIoError)
	ErrUnsupported  = errors.MustNewCode("objstore.unsupported_backend", errors.KindConfigError)
)

// ObjectMeta describes one listed object.
type ObjectMeta struct {
	Path string
	Size int64
}

// backendImpl is the capability set a storage variant must implement (spec.md §4.1).
// ListPrefix is a lazy traversal: fn is invoked once per object in an
// implementation-defined but stable order, and a non-nil return from fn
// stops the walk early without buffering the remaining keys.
type backendImpl interface {
	Kind() string
	ListPrefix(ctx context.Context, prefix string, fn func(ObjectMeta) error) error
	GetRange(ctx context.Context, key string, offset, length int64) ([]byte, error)
	GetAll(ctx context.Context, key string) ([]byte, error)
	Head(ctx context.Context, key string) (int64, error)
	Close() error
}

// Reader is the Object Reader: a backendImpl wrapped with retry-with-backoff
// for transient failures, per spec.md §4.1 ("retries idempotent failures
// with bounded exponential backoff... capped at 5 attempts and 30s total").
type Reader struct {
	backend backendImpl
	retry   RetryPolicy
	uri     ParsedURI
}

// New constructs a Reader for uri, dispatching on its scheme. Unsupported
// backends fail immediately with ConfigError, never lazily.
func New(ctx context.Context, uri string, opts Options) (*Reader, error) {
	parsed, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	var backend backendImpl
	switch parsed.Backend {
	case BackendLocal:
		backend = newLocalBackend()
	case BackendS3:
		backend, err = newS3Backend(ctx, parsed, opts)
	case BackendGCS:
		backend, err = newGCSBackend(ctx, parsed, opts)
	case BackendAzure:
		backend, err = newAzureBackend(ctx, parsed, opts)
	default:
		return nil, errors.New(ErrUnsupported, "unsupported backend", nil).AddContext("uri", uri)
	}
	if err != nil {
		return nil, err
	}

	policy := opts.Retry
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy()
	}

	return &Reader{backend: backend, retry: policy, uri: parsed}, nil
}

// Options configures a Reader at construction time. Credentials are never
// cached in package-level state (spec.md §5's "no process-wide mutable
// state"); each Reader resolves its own credential chain.
type Options struct {
	Retry           RetryPolicy
	MaxConnsPerHost int
	// AWSProfile and AWSRegion override the AWS_PROFILE and AWS_REGION env
	// vars read by the S3 backend and may be set explicitly, e.g. from a
	// config file. AWSRoleARN is stored but not read by any backend.
	AWSProfile string
	AWSRoleARN string
	AWSRegion  string
}

// TableRoot returns the normalized key/prefix this Reader was opened against.
func (r *Reader) TableRoot() string { return r.uri.Key }

// Bucket returns the parsed bucket name, empty for a local backend.
func (r *Reader) Bucket() string { return r.uri.Bucket }

// BackendKind reports which variant is serving this Reader.
func (r *Reader) BackendKind() string { return r.backend.Kind() }

// ListPrefix lazily lists every object under prefix, retrying the
// underlying call (not each individual yielded item) on transient failure.
func (r *Reader) ListPrefix(ctx context.Context, prefix string, fn func(ObjectMeta) error) error {
	return r.withRetry(ctx, func(ctx context.Context) error {
		return r.backend.ListPrefix(ctx, prefix, fn)
	})
}

// GetRange reads length bytes starting at offset from key.
func (r *Reader) GetRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	var out []byte
	err := r.withRetry(ctx, func(ctx context.Context) error {
		b, err := r.backend.GetRange(ctx, key, offset, length)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// GetAll reads the full contents of key.
func (r *Reader) GetAll(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := r.withRetry(ctx, func(ctx context.Context) error {
		b, err := r.backend.GetAll(ctx, key)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// Head returns the size in bytes of key.
func (r *Reader) Head(ctx context.Context, key string) (int64, error) {
	var size int64
	err := r.withRetry(ctx, func(ctx context.Context) error {
		s, err := r.backend.Head(ctx, key)
		if err != nil {
			return err
		}
		size = s
		return nil
	})
	return size, err
}

// Close releases the backend's connection pool.
func (r *Reader) Close() error { return r.backend.Close() }
