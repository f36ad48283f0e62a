package objstore

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeS3 starts an in-process S3-compatible server so s3Backend can be
// exercised without real AWS credentials or network access.
func newFakeS3(t *testing.T) (*minio.Client, func()) {
	t.Helper()

	faker := gofakes3.New(s3mem.New())
	ts := httptest.NewServer(faker.Server())

	client, err := minio.New(strings.TrimPrefix(ts.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("KEY", "SECRET", ""),
		Secure: false,
	})
	require.NoError(t, err)

	return client, ts.Close
}

func TestS3Backend_GetAllAndListPrefix(t *testing.T) {
	client, closeServer := newFakeS3(t)
	defer closeServer()

	ctx := context.Background()
	require.NoError(t, client.MakeBucket(ctx, "deltakit-test", minio.MakeBucketOptions{}))

	_, err := client.PutObject(ctx, "deltakit-test", "_delta_log/00000000000000000000.json",
		strings.NewReader(`{"add":{"path":"f.parquet","size":1,"modificationTime":1,"dataChange":true}}`),
		-1, minio.PutObjectOptions{})
	require.NoError(t, err)

	backend := &s3Backend{client: client, bucket: "deltakit-test"}

	data, err := backend.GetAll(ctx, "_delta_log/00000000000000000000.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), "f.parquet")

	var seen []string
	err = backend.ListPrefix(ctx, "_delta_log/", func(m ObjectMeta) error {
		seen = append(seen, m.Path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"_delta_log/00000000000000000000.json"}, seen)
}

func TestS3Backend_GetAllNotFound(t *testing.T) {
	client, closeServer := newFakeS3(t)
	defer closeServer()

	ctx := context.Background()
	require.NoError(t, client.MakeBucket(ctx, "deltakit-test", minio.MakeBucketOptions{}))

	backend := &s3Backend{client: client, bucket: "deltakit-test"}
	_, err := backend.GetAll(ctx, "missing.json")
	require.Error(t, err)
}
