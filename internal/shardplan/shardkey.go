package shardplan

import "github.com/zeebo/xxh3"

// ShardKey is a deterministic, path-derived fingerprint (spec.md §3). It
// never influences placement -- placement is order- and comparison-driven,
// per spec.md §4.3's determinism requirements -- but is exposed for callers
// (e.g. the footprint command) that want a cheap identity check.
type ShardKey uint64

// NewShardKey fingerprints path. Equal paths always hash equal, on any
// machine, per spec.md §3's "deterministic function of path."
func NewShardKey(path string) ShardKey {
	return ShardKey(xxh3.HashString(path))
}
