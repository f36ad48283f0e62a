package objstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltakit/deltakit/internal/errors"
)

func TestLocalBackend_GetAllAndHead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0644))

	b := newLocalBackend()
	data, err := b.GetAll(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	size, err := b.Head(context.Background(), path)
	require.NoError(t, err)
	assert.EqualValues(t, 11, size)
}

func TestLocalBackend_GetRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0644))

	b := newLocalBackend()
	data, err := b.GetRange(context.Background(), path, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, "3456", string(data))
}

func TestLocalBackend_ListPrefixWalksDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "1.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "2.txt"), []byte("yy"), 0644))

	b := newLocalBackend()
	var seen []ObjectMeta
	err := b.ListPrefix(context.Background(), dir, func(m ObjectMeta) error {
		seen = append(seen, m)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 2)
}

func TestLocalBackend_NotFound(t *testing.T) {
	b := newLocalBackend()
	_, err := b.GetAll(context.Background(), "/nonexistent/path/f.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalBackend_ListPrefixMissingDirIsEmptyNotError(t *testing.T) {
	b := newLocalBackend()
	var calls int
	err := b.ListPrefix(context.Background(), "/definitely/not/here", func(m ObjectMeta) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
}
