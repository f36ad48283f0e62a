package shardplan

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltakit/deltakit/internal/deltalog"
	"github.com/deltakit/deltakit/internal/errors"
	"github.com/deltakit/deltakit/internal/objstore"
)

// fakeReader is a minimal in-memory stand-in for deltalog's byteReader,
// satisfying it structurally so plan_test can build real Snapshots via a
// real Replayer instead of poking at deltalog internals.
type fakeReader struct {
	objects map[string][]byte
}

func (f *fakeReader) GetAll(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("not found: %s", key)
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

func strp(s string) *string { return &s }
func i64p(n int64) *int64   { return &n }

// buildSnapshot replays a single synthetic commit containing a metaData
// action (when partitionCols is non-empty) followed by one add per file.
func buildSnapshot(t *testing.T, partitionCols []string, files []deltalog.Add) *deltalog.Snapshot {
	t.Helper()

	var lines []string
	if len(partitionCols) > 0 {
		cols := make([]string, len(partitionCols))
		for i, c := range partitionCols {
			cols[i] = fmt.Sprintf("%q", c)
		}
		lines = append(lines, fmt.Sprintf(`{"metaData":{"id":"t","schemaString":"{}","partitionColumns":[%s]}}`, strings.Join(cols, ",")))
	}
	for _, f := range files {
		lines = append(lines, addActionJSON(f))
	}

	reader := &fakeReader{objects: map[string][]byte{
		"root/_delta_log/00000000000000000000.json": []byte(strings.Join(lines, "\n")),
	}}
	rep := deltalog.New(reader, "root", 0)
	snap, err := rep.SnapshotAt(context.Background(), nil)
	require.NoError(t, err)
	return snap
}

func addActionJSON(f deltalog.Add) string {
	var pv []string
	for k, v := range f.PartitionValues {
		if v == nil {
			pv = append(pv, fmt.Sprintf(`"%s":null`, k))
			continue
		}
		pv = append(pv, fmt.Sprintf(`"%s":"%s"`, k, *v))
	}
	sort.Strings(pv)

	stats := ""
	if f.Stats != nil && f.Stats.NumRecords != nil {
		stats = fmt.Sprintf(`,"stats":"{\"numRecords\":%d}"`, *f.Stats.NumRecords)
	}

	return fmt.Sprintf(`{"add":{"path":"%s","size":%d,"modificationTime":1,"dataChange":true,"partitionValues":{%s}%s}}`,
		f.Path, f.Size, strings.Join(pv, ","), stats)
}

func basicFiles() []deltalog.Add {
	return []deltalog.Add{
		{Path: "dt=2024-01-01/a.parquet", Size: 100, PartitionValues: map[string]*string{"dt": strp("2024-01-01")}},
		{Path: "dt=2024-01-01/b.parquet", Size: 50, PartitionValues: map[string]*string{"dt": strp("2024-01-01")}},
		{Path: "dt=2024-01-02/c.parquet", Size: 200, PartitionValues: map[string]*string{"dt": strp("2024-01-02")}},
		{Path: "dt=2024-01-03/d.parquet", Size: 30, PartitionValues: map[string]*string{"dt": strp("2024-01-03")}},
	}
}

func TestPlan_UnionAndPartitionInvariant(t *testing.T) {
	snap := buildSnapshot(t, []string{"dt"}, basicFiles())
	cfg := PlannerConfig{Shards: 2, Balance: BalanceBytes, CoLocateBy: []string{"dt"}}

	manifest, err := Plan(snap, cfg)
	require.NoError(t, err)

	seen := make(map[string]bool)
	var total int64
	for _, entry := range manifest.Assignments {
		for _, f := range entry.Files {
			assert.False(t, seen[f.Path], "path %s assigned twice", f.Path)
			seen[f.Path] = true
			total += f.Size
		}
		assert.Equal(t, entry.TotalBytes, sumSizes(entry.Files))
	}
	assert.Len(t, seen, len(snap.ActiveFiles()))
	assert.EqualValues(t, snap.TotalBytes(), total)
}

func sumSizes(files []ManifestFile) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}

func TestPlan_CoLocationKeepsGroupTogether(t *testing.T) {
	snap := buildSnapshot(t, []string{"dt"}, basicFiles())
	cfg := PlannerConfig{Shards: 4, Balance: BalanceBytes, CoLocateBy: []string{"dt"}}

	manifest, err := Plan(snap, cfg)
	require.NoError(t, err)

	shardOf := make(map[string]int)
	for _, entry := range manifest.Assignments {
		for _, f := range entry.Files {
			shardOf[f.Path] = entry.Shard
		}
	}
	assert.Equal(t, shardOf["dt=2024-01-01/a.parquet"], shardOf["dt=2024-01-01/b.parquet"])
}

func TestPlan_Deterministic(t *testing.T) {
	snap := buildSnapshot(t, []string{"dt"}, basicFiles())
	cfg := PlannerConfig{Shards: 3, Balance: BalanceBytes, CoLocateBy: []string{"dt"}}

	m1, err := Plan(snap, cfg)
	require.NoError(t, err)
	m2, err := Plan(snap, cfg)
	require.NoError(t, err)

	assert.Equal(t, m1, m2)
}

func TestPlan_MaxFilesPerShardRespected(t *testing.T) {
	files := []deltalog.Add{
		{Path: "a.parquet", Size: 10},
		{Path: "b.parquet", Size: 10},
		{Path: "c.parquet", Size: 10},
	}
	snap := buildSnapshot(t, nil, files)
	max := 1
	cfg := PlannerConfig{Shards: 3, Balance: BalanceBytes, MaxFilesPerShard: &max}

	manifest, err := Plan(snap, cfg)
	require.NoError(t, err)
	for _, entry := range manifest.Assignments {
		assert.LessOrEqual(t, len(entry.Files), 1)
	}
}

func TestPlan_InfeasibleWhenCapTooTight(t *testing.T) {
	files := []deltalog.Add{
		{Path: "a.parquet", Size: 10},
		{Path: "b.parquet", Size: 10},
	}
	snap := buildSnapshot(t, nil, files)
	max := 1
	cfg := PlannerConfig{Shards: 1, Balance: BalanceBytes, MaxFilesPerShard: &max}

	_, err := Plan(snap, cfg)
	require.Error(t, err)
	assert.Equal(t, errors.KindInfeasible, errors.Kind(err))
}

func TestPlan_MissingStatisticsForRowsBalance(t *testing.T) {
	files := []deltalog.Add{{Path: "a.parquet", Size: 10}}
	snap := buildSnapshot(t, nil, files)
	cfg := PlannerConfig{Shards: 1, Balance: BalanceRows}

	_, err := Plan(snap, cfg)
	require.Error(t, err)
	assert.Equal(t, errors.KindMissingStatistics, errors.Kind(err))
}

func TestPlan_RowsBalanceImputesMissingStats(t *testing.T) {
	files := []deltalog.Add{
		{Path: "a.parquet", Size: 100, Stats: &deltalog.Stats{NumRecords: i64p(10)}},
		{Path: "b.parquet", Size: 200}, // imputed: ratio 10/100 -> 20 rows, but stays unreported
	}
	snap := buildSnapshot(t, nil, files)
	cfg := PlannerConfig{Shards: 2, Balance: BalanceRows}

	manifest, err := Plan(snap, cfg)
	require.NoError(t, err)

	var rowsA, rowsB *int64
	shardOf := make(map[string]int)
	for _, entry := range manifest.Assignments {
		for _, f := range entry.Files {
			shardOf[f.Path] = entry.Shard
			if f.Path == "a.parquet" {
				rowsA = f.Rows
			}
			if f.Path == "b.parquet" {
				rowsB = f.Rows
			}
		}
	}
	require.NotNil(t, rowsA)
	assert.EqualValues(t, 10, *rowsA)
	assert.Nil(t, rowsB)

	// b's imputed 20 rows outweigh a's 10, so b is placed first, on shard 0.
	assert.Equal(t, 0, shardOf["b.parquet"])
	assert.Equal(t, 1, shardOf["a.parquet"])
}

func TestPlan_EmptyTableFails(t *testing.T) {
	snap := buildSnapshot(t, nil, nil)
	cfg := PlannerConfig{Shards: 1, Balance: BalanceBytes}

	_, err := Plan(snap, cfg)
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidConfig, errors.Kind(err))
}

func TestPlan_InvalidConfigUnknownColocateColumn(t *testing.T) {
	snap := buildSnapshot(t, []string{"dt"}, basicFiles())
	cfg := PlannerConfig{Shards: 1, Balance: BalanceBytes, CoLocateBy: []string{"region"}}

	_, err := Plan(snap, cfg)
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidConfig, errors.Kind(err))
}

func TestPlan_StickyPreservesPriorAssignmentWhenFeasible(t *testing.T) {
	files := []deltalog.Add{
		{Path: "dt=2024-01-01/a.parquet", Size: 10, PartitionValues: map[string]*string{"dt": strp("2024-01-01")}},
		{Path: "dt=2024-01-02/b.parquet", Size: 10, PartitionValues: map[string]*string{"dt": strp("2024-01-02")}},
	}
	snap := buildSnapshot(t, []string{"dt"}, files)
	cfg := PlannerConfig{
		Shards:     2,
		Balance:    BalanceBytes,
		CoLocateBy: []string{"dt"},
		StickyBy:   []string{"dt"},
		PreviousAssignment: ShardAssignment{
			"dt=2024-01-01/a.parquet": 1,
			"dt=2024-01-02/b.parquet": 0,
		},
	}

	manifest, err := Plan(snap, cfg)
	require.NoError(t, err)

	shardOf := make(map[string]int)
	for _, entry := range manifest.Assignments {
		for _, f := range entry.Files {
			shardOf[f.Path] = entry.Shard
		}
	}
	assert.Equal(t, 1, shardOf["dt=2024-01-01/a.parquet"])
	assert.Equal(t, 0, shardOf["dt=2024-01-02/b.parquet"])
}
