package deltalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommitFile_AddAndMetadata(t *testing.T) {
	raw := []byte(`{"metaData":{"id":"t1","schemaString":"{}","partitionColumns":["dt"]}}
{"protocol":{"minReaderVersion":1,"minWriterVersion":2}}
{"add":{"path":"dt=2024-01-01/part-0.parquet","size":100,"modificationTime":1000,"dataChange":true,"partitionValues":{"dt":"2024-01-01"},"stats":"{\"numRecords\":10}"}}
`)

	actions, unknown, err := parseCommitFile(raw)
	require.NoError(t, err)
	assert.Empty(t, unknown)
	require.Len(t, actions, 3)

	assert.Equal(t, "metaData", actions[0].kind)
	assert.Equal(t, "t1", actions[0].metadata.ID)

	assert.Equal(t, "protocol", actions[1].kind)
	assert.Equal(t, 1, actions[1].protocol.MinReaderVersion)

	assert.Equal(t, "add", actions[2].kind)
	assert.Equal(t, "dt=2024-01-01/part-0.parquet", actions[2].add.Path)
	require.NotNil(t, actions[2].add.Stats)
	require.NotNil(t, actions[2].add.Stats.NumRecords)
	assert.EqualValues(t, 10, *actions[2].add.Stats.NumRecords)
	require.Contains(t, actions[2].add.PartitionValues, "dt")
	require.NotNil(t, actions[2].add.PartitionValues["dt"])
	assert.Equal(t, "2024-01-01", *actions[2].add.PartitionValues["dt"])
}

func TestParseCommitFile_UnknownActionIsSkippedNotFailed(t *testing.T) {
	raw := []byte(`{"domainMetadata":{"domain":"x"}}
{"remove":{"path":"old.parquet","deletionTimestamp":1234,"dataChange":true}}
`)

	actions, unknown, err := parseCommitFile(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"domainMetadata"}, unknown)
	require.Len(t, actions, 1)
	assert.Equal(t, "remove", actions[0].kind)
	assert.Equal(t, "old.parquet", actions[0].remove.Path)
}

func TestParseCommitFile_BlankLinesSkipped(t *testing.T) {
	raw := []byte("\n\n{\"txn\":{\"appId\":\"a\",\"version\":1}}\n\n")
	actions, _, err := parseCommitFile(raw)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "txn", actions[0].kind)
}

func TestParseCommitFile_InvalidJSONFails(t *testing.T) {
	_, _, err := parseCommitFile([]byte("not json"))
	require.Error(t, err)
}

func TestParseCommitFile_AddMissingPathFails(t *testing.T) {
	_, _, err := parseCommitFile([]byte(`{"add":{"size":1}}`))
	require.Error(t, err)
}
