package deltalog

import "sort"

// DiffResult reports the files added and removed between two Snapshots
// of the same table, satisfying the diff law of spec.md §8:
// files_added(V1,V2) ∪ (active(V1) \ removed(V1,V2)) = active(V2).
type DiffResult struct {
	FromVersion int64
	ToVersion   int64
	Added       []Add
	Removed     []Add
	BytesAdded  int64
	BytesRemoved int64
}

// Diff compares the active file sets of two Snapshots, in lexicographic
// path order.
func Diff(from, to *Snapshot) DiffResult {
	result := DiffResult{FromVersion: from.Version(), ToVersion: to.Version()}

	for _, a := range to.ActiveFiles() {
		if _, ok := from.Lookup(a.Path); !ok {
			result.Added = append(result.Added, a)
			result.BytesAdded += a.Size
		}
	}
	for _, a := range from.ActiveFiles() {
		if _, ok := to.Lookup(a.Path); !ok {
			result.Removed = append(result.Removed, a)
			result.BytesRemoved += a.Size
		}
	}

	sort.Slice(result.Added, func(i, j int) bool { return result.Added[i].Path < result.Added[j].Path })
	sort.Slice(result.Removed, func(i, j int) bool { return result.Removed[i].Path < result.Removed[j].Path })
	return result
}
