package objstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI_SchemeDispatch(t *testing.T) {
	cases := []struct {
		uri     string
		backend Backend
		bucket  string
		key     string
	}{
		{"s3://my-bucket/a/b.json", BackendS3, "my-bucket", "a/b.json"},
		{"gs://gcs-bucket/prefix", BackendGCS, "gcs-bucket", "prefix"},
		{"abfs://container/path", BackendAzure, "container", "path"},
		{"abfss://container/path", BackendAzure, "container", "path"},
		{"file:///tmp/table", BackendLocal, "", "tmp/table"},
		{"/tmp/table", BackendLocal, "", "tmp/table"},
	}

	for _, c := range cases {
		parsed, err := ParseURI(c.uri)
		require.NoError(t, err, c.uri)
		assert.Equal(t, c.backend, parsed.Backend, c.uri)
		assert.Equal(t, c.bucket, parsed.Bucket, c.uri)
		assert.Equal(t, c.key, parsed.Key, c.uri)
	}
}

// TestParseURI_TraversalIsClampedToRoot verifies path.Clean's
// leading-slash normalization keeps ".." segments from escaping above the
// table root, the same technique net/http's file server uses.
func TestParseURI_TraversalIsClampedToRoot(t *testing.T) {
	parsed, err := ParseURI("/tmp/../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", parsed.Key)

	parsed, err = ParseURI("s3://bucket/../../secret")
	require.NoError(t, err)
	assert.Equal(t, "secret", parsed.Key)
}

func TestParseURI_MissingBucketFails(t *testing.T) {
	_, err := ParseURI("s3://")
	require.Error(t, err)
}

func TestParseURI_CollapsesDoubleSlash(t *testing.T) {
	parsed, err := ParseURI("/tmp//table//sub")
	require.NoError(t, err)
	assert.Equal(t, "tmp/table/sub", parsed.Key)
}
