package objstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/deltakit/deltakit/internal/errors"
)

// localBackend implements Backend over the local filesystem, modeled on the
// teacher's server/storage/filesystem/fs.go FileStorage.
type localBackend struct{}

func newLocalBackend() *localBackend { return &localBackend{} }

func (l *localBackend) Kind() string { return "local" }

func (l *localBackend) ListPrefix(ctx context.Context, prefix string, fn func(ObjectMeta) error) error {
	root := prefix
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return classifyPathErr(err, root)
	}
	if !info.IsDir() {
		return fn(ObjectMeta{Path: root, Size: info.Size()})
	}

	return filepath.Walk(root, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return classifyPathErr(err, p)
		}
		if ctx.Err() != nil {
			return errors.New(errors.CommonCancelled, "listing cancelled", ctx.Err())
		}
		if fi.IsDir() {
			return nil
		}
		return fn(ObjectMeta{Path: p, Size: fi.Size()})
	})
}

func (l *localBackend) GetRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	f, err := os.Open(key)
	if err != nil {
		return nil, classifyPathErr(err, key)
	}
	defer f.Close()

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, classifyPathErr(err, key)
	}
	return buf[:n], nil
}

func (l *localBackend) GetAll(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(key)
	if err != nil {
		return nil, classifyPathErr(err, key)
	}
	return data, nil
}

func (l *localBackend) Head(ctx context.Context, key string) (int64, error) {
	info, err := os.Stat(key)
	if err != nil {
		return 0, classifyPathErr(err, key)
	}
	return info.Size(), nil
}

func (l *localBackend) Close() error { return nil }

func classifyPathErr(err error, path string) error {
	switch {
	case os.IsNotExist(err):
		return errors.New(ErrNotFound, "path not found", err).AddContext("path", path)
	case os.IsPermission(err):
		return errors.New(ErrForbidden, "permission denied", err).AddContext("path", path)
	default:
		return errors.New(ErrMalformed, "local filesystem error", err).AddContext("path", path)
	}
}
