package objstore

import (
	"path"
	"strings"

	"github.com/deltakit/deltakit/internal/errors"
)

var ErrMalformedURI = errors.MustNewCode("objstore.malformed_uri", errors.KindIoError)

// Backend enumerates the object-store variants deltakit dispatches on.
// Unsupported backends are rejected at parse time with a ConfigError,
// never discovered deep inside the Log Replayer.
type Backend int

const (
	BackendLocal Backend = iota
	BackendS3
	BackendGCS
	BackendAzure
)

func (b Backend) String() string {
	switch b {
	case BackendLocal:
		return "local"
	case BackendS3:
		return "s3"
	case BackendGCS:
		return "gcs"
	case BackendAzure:
		return "azure"
	default:
		return "unknown"
	}
}

// ParsedURI is the normalized form of a TableRef's base URI.
type ParsedURI struct {
	Backend Backend
	Bucket  string // empty for BackendLocal
	Key     string // object key / filesystem path, normalized, no leading slash for cloud backends
	Raw     string
}

// ParseURI classifies uri by scheme (spec.md §4.1) and normalizes its path.
// Any other "scheme://" form is rejected with a ConfigError. Normalization
// collapses "//" and resolves ".." segments against the root with
// path.Clean, so a path never climbs above the root; ".." is clamped
// rather than rejected.
func ParseURI(uri string) (ParsedURI, error) {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		return parseBucketURI(uri, "s3://", BackendS3)
	case strings.HasPrefix(uri, "gs://"):
		return parseBucketURI(uri, "gs://", BackendGCS)
	case strings.HasPrefix(uri, "abfss://"):
		return parseBucketURI(uri, "abfss://", BackendAzure)
	case strings.HasPrefix(uri, "abfs://"):
		return parseBucketURI(uri, "abfs://", BackendAzure)
	case strings.HasPrefix(uri, "file://"):
		p := normalizePath(strings.TrimPrefix(uri, "file://"))
		if err := rejectTraversal(p); err != nil {
			return ParsedURI{}, err
		}
		return ParsedURI{Backend: BackendLocal, Key: p, Raw: uri}, nil
	default:
		if strings.Contains(uri, "://") {
			return ParsedURI{}, errors.New(ErrUnsupported, "unsupported URI scheme", nil).AddContext("uri", uri)
		}
		// bare filesystem path
		p := normalizePath(uri)
		if err := rejectTraversal(p); err != nil {
			return ParsedURI{}, err
		}
		return ParsedURI{Backend: BackendLocal, Key: p, Raw: uri}, nil
	}
}

func parseBucketURI(uri, prefix string, backend Backend) (ParsedURI, error) {
	rest := strings.TrimPrefix(uri, prefix)
	if rest == "" {
		return ParsedURI{}, errors.New(ErrMalformedURI, "missing bucket in URI", nil).AddContext("uri", uri)
	}
	parts := strings.SplitN(rest, "/", 2)
	bucket := parts[0]
	if bucket == "" {
		return ParsedURI{}, errors.New(ErrMalformedURI, "missing bucket in URI", nil).AddContext("uri", uri)
	}
	key := ""
	if len(parts) == 2 {
		key = normalizePath(parts[1])
	}
	if err := rejectTraversal(key); err != nil {
		return ParsedURI{}, err
	}
	return ParsedURI{Backend: backend, Bucket: bucket, Key: key, Raw: uri}, nil
}

// Join appends a relative path segment (an Add's recorded path) to the table root.
func (p ParsedURI) Join(rel string) string {
	if p.Key == "" {
		return normalizePath(rel)
	}
	return path.Join(p.Key, rel)
}

func normalizePath(p string) string {
	cleaned := path.Clean("/" + p)
	return strings.TrimPrefix(cleaned, "/")
}

func rejectTraversal(p string) error {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return errors.New(ErrMalformedURI, "path traversal is not permitted", nil).AddContext("path", p)
		}
	}
	return nil
}
