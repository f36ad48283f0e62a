package deltalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltakit/deltakit/internal/errors"
	"github.com/deltakit/deltakit/internal/objstore"
)

// fakeReader is an in-memory byteReader, letting replay tests exercise
// Replayer without touching internal/objstore's real backends.
type fakeReader struct {
	objects map[string][]byte
}

func newFakeReader() *fakeReader {
	return &fakeReader{objects: make(map[string][]byte)}
}

func (f *fakeReader) put(path string, data []byte) {
	f.objects[path] = data
}

func (f *fakeReader) GetAll(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New(objstore.ErrNotFound, "not found", nil).AddContext("path", key)
	}
	return data, nil
}

func (f *fakeReader) ListPrefix(ctx context.Context, prefix string, fn func(objstore.ObjectMeta) error) error {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn(objstore.ObjectMeta{Path: k, Size: int64(len(f.objects[k]))}); err != nil {
			return err
		}
	}
	return nil
}

func commit(version int64, lines ...string) (string, []byte) {
	path := fmt.Sprintf("root/_delta_log/%020d.json", version)
	return path, []byte(strings.Join(lines, "\n"))
}

func newTestReplayer(r *fakeReader) *Replayer {
	return New(r, "root", 0)
}

func TestReplayer_ListVersions(t *testing.T) {
	r := newFakeReader()
	p0, d0 := commit(0, `{"metaData":{"id":"t","schemaString":"{}"}}`)
	p1, d1 := commit(1, `{"add":{"path":"a.parquet","size":1,"modificationTime":1,"dataChange":true}}`)
	r.put(p0, d0)
	r.put(p1, d1)

	rep := newTestReplayer(r)
	versions, err := rep.ListVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1}, versions)
}

func TestReplayer_SnapshotAt_Latest(t *testing.T) {
	r := newFakeReader()
	p0, d0 := commit(0,
		`{"metaData":{"id":"t","schemaString":"{}","partitionColumns":["dt"]}}`,
		`{"protocol":{"minReaderVersion":1,"minWriterVersion":2}}`,
		`{"add":{"path":"dt=a/f0.parquet","size":10,"modificationTime":1,"dataChange":true,"partitionValues":{"dt":"a"}}}`,
	)
	p1, d1 := commit(1,
		`{"add":{"path":"dt=a/f1.parquet","size":20,"modificationTime":2,"dataChange":true,"partitionValues":{"dt":"a"}}}`,
		`{"remove":{"path":"dt=a/f0.parquet","deletionTimestamp":5,"dataChange":true}}`,
	)
	r.put(p0, d0)
	r.put(p1, d1)

	rep := newTestReplayer(r)
	snap, err := rep.SnapshotAt(context.Background(), nil)
	require.NoError(t, err)

	assert.EqualValues(t, 1, snap.Version())
	files := snap.ActiveFiles()
	require.Len(t, files, 1)
	assert.Equal(t, "dt=a/f1.parquet", files[0].Path)
	require.Len(t, snap.Tombstones(0), 1)
	assert.Equal(t, "dt=a/f0.parquet", snap.Tombstones(0)[0].Remove.Path)
}

func TestReplayer_SnapshotAt_ExplicitVersion(t *testing.T) {
	r := newFakeReader()
	p0, d0 := commit(0, `{"add":{"path":"f0.parquet","size":10,"modificationTime":1,"dataChange":true}}`)
	p1, d1 := commit(1, `{"add":{"path":"f1.parquet","size":20,"modificationTime":2,"dataChange":true}}`)
	r.put(p0, d0)
	r.put(p1, d1)

	rep := newTestReplayer(r)
	v0 := int64(0)
	snap, err := rep.SnapshotAt(context.Background(), &v0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, snap.Version())
	require.Len(t, snap.ActiveFiles(), 1)
	assert.Equal(t, "f0.parquet", snap.ActiveFiles()[0].Path)
}

func TestReplayer_SnapshotAt_VersionNotFound(t *testing.T) {
	r := newFakeReader()
	p0, d0 := commit(0, `{"add":{"path":"f0.parquet","size":10,"modificationTime":1,"dataChange":true}}`)
	r.put(p0, d0)

	rep := newTestReplayer(r)
	v5 := int64(5)
	_, err := rep.SnapshotAt(context.Background(), &v5)
	require.Error(t, err)
	assert.Equal(t, errors.KindVersionNotFound, errors.Kind(err))
}

func TestReplayer_SnapshotAt_NoCommitsIsVersionNotFound(t *testing.T) {
	rep := newTestReplayer(newFakeReader())
	_, err := rep.SnapshotAt(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindVersionNotFound, errors.Kind(err))
}

func TestReplayer_SnapshotAt_GapIsCorruptLog(t *testing.T) {
	r := newFakeReader()
	p0, d0 := commit(0, `{"add":{"path":"f0.parquet","size":10,"modificationTime":1,"dataChange":true}}`)
	p2, d2 := commit(2, `{"add":{"path":"f2.parquet","size":10,"modificationTime":1,"dataChange":true}}`)
	r.put(p0, d0)
	r.put(p2, d2)

	rep := newTestReplayer(r)
	_, err := rep.SnapshotAt(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindCorruptLog, errors.Kind(err))
}

func TestReplayer_SnapshotAt_UnsupportedProtocol(t *testing.T) {
	r := newFakeReader()
	p0, d0 := commit(0, `{"protocol":{"minReaderVersion":99,"minWriterVersion":99}}`)
	r.put(p0, d0)

	rep := newTestReplayer(r)
	_, err := rep.SnapshotAt(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindUnsupportedProtocol, errors.Kind(err))
}

func TestReplayer_SnapshotAt_MissingLastCheckpointFallsBackToFullReplay(t *testing.T) {
	r := newFakeReader()
	p0, d0 := commit(0, `{"add":{"path":"f0.parquet","size":10,"modificationTime":1,"dataChange":true}}`)
	r.put(p0, d0)

	rep := newTestReplayer(r)
	snap, err := rep.SnapshotAt(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, snap.ActiveFiles(), 1)
}
