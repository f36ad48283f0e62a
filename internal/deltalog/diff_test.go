package deltalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func snapshotFrom(version int64, files ...Add) *Snapshot {
	idx := make(map[string]int, len(files))
	for i, f := range files {
		idx[f.Path] = i
	}
	return &Snapshot{version: version, active: files, activeIdx: idx}
}

func TestDiff_AddedAndRemoved(t *testing.T) {
	from := snapshotFrom(1,
		Add{Path: "a.parquet", Size: 10},
		Add{Path: "b.parquet", Size: 20},
	)
	to := snapshotFrom(2,
		Add{Path: "b.parquet", Size: 20},
		Add{Path: "c.parquet", Size: 30},
	)

	d := Diff(from, to)
	assert.EqualValues(t, 1, d.FromVersion)
	assert.EqualValues(t, 2, d.ToVersion)

	assert.Len(t, d.Added, 1)
	assert.Equal(t, "c.parquet", d.Added[0].Path)
	assert.EqualValues(t, 30, d.BytesAdded)

	assert.Len(t, d.Removed, 1)
	assert.Equal(t, "a.parquet", d.Removed[0].Path)
	assert.EqualValues(t, 10, d.BytesRemoved)
}

// TestDiff_Law verifies spec.md §8's diff law: files_added(V1,V2) union
// (active(V1) minus removed(V1,V2)) equals active(V2).
func TestDiff_Law(t *testing.T) {
	from := snapshotFrom(1,
		Add{Path: "a.parquet", Size: 10},
		Add{Path: "b.parquet", Size: 20},
		Add{Path: "d.parquet", Size: 40},
	)
	to := snapshotFrom(2,
		Add{Path: "b.parquet", Size: 20},
		Add{Path: "c.parquet", Size: 30},
		Add{Path: "d.parquet", Size: 40},
	)

	d := Diff(from, to)

	removedSet := make(map[string]bool)
	for _, r := range d.Removed {
		removedSet[r.Path] = true
	}
	leftAfterRemoval := make(map[string]bool)
	for _, f := range from.ActiveFiles() {
		if !removedSet[f.Path] {
			leftAfterRemoval[f.Path] = true
		}
	}
	for _, a := range d.Added {
		leftAfterRemoval[a.Path] = true
	}

	toSet := make(map[string]bool)
	for _, f := range to.ActiveFiles() {
		toSet[f.Path] = true
	}

	assert.Equal(t, toSet, leftAfterRemoval)
}

func TestDiff_NoChanges(t *testing.T) {
	files := []Add{{Path: "a.parquet", Size: 10}}
	from := snapshotFrom(1, files...)
	to := snapshotFrom(1, files...)

	d := Diff(from, to)
	assert.Empty(t, d.Added)
	assert.Empty(t, d.Removed)
}
