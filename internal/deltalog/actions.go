// Package deltalog is deltakit's Log Replayer (spec.md §4.2): it
// reconstructs a Snapshot by replaying Delta Lake transaction log commits
// and checkpoints, in version order, into an active file set.
package deltalog

// Stats carries the subset of a Delta file-statistics struct the planner's
// rows-balance objective needs (spec.md §4.3's "bytes-per-row" fallback).
type Stats struct {
	NumRecords *int64                 `json:"numRecords,omitempty"`
	MinValues  map[string]interface{} `json:"minValues,omitempty"`
	MaxValues  map[string]interface{} `json:"maxValues,omitempty"`
	NullCount  map[string]interface{} `json:"nullCount,omitempty"`
}

// Add is the action emitted when a data file becomes part of the table
// (spec.md §3's Add entity).
type Add struct {
	Path             string
	PartitionValues  map[string]*string
	Size             int64
	ModificationTime int64
	DataChange       bool
	Stats            *Stats
}

// Remove tombstones a previously-Added path (spec.md §3's Remove entity).
type Remove struct {
	Path              string
	DeletionTimestamp int64
	DataChange        bool
	Size              *int64
}

// Metadata carries the table's schema and partition layout. The latest
// Metadata action in replay order wins (spec.md §4.2 step 3).
type Metadata struct {
	ID               string
	Name             string
	Description      string
	SchemaString     string
	PartitionColumns []string
	Configuration    map[string]string
}

// Protocol records the minimum reader/writer protocol versions a table
// requires. Replay aborts with UnsupportedProtocol if MinReaderVersion
// exceeds what this implementation understands.
type Protocol struct {
	MinReaderVersion int
	MinWriterVersion int
}

// Txn is an idempotency marker for a streaming application; retained for
// diagnostics only (spec.md §4.2 step 3).
type Txn struct {
	AppID      string
	Version    int64
	LastUpdate *int64
}

// CommitInfo is free-form commit provenance, retained for diagnostics only.
type CommitInfo struct {
	Timestamp *int64
	Operation string
}

// Tombstone is a retained Remove record, indexed by the version it was
// observed at, kept for vacuum-dry-run auditing (spec.md §4.2 step 3,
// "tombstones(since)").
type Tombstone struct {
	AtVersion int64
	Remove    Remove
}

// maxSupportedReaderVersion is the highest Delta reader protocol version
// this replayer understands (spec.md §6: "Delta Lake transaction log
// version 1").
const maxSupportedReaderVersion = 1
