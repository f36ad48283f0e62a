package shardplan

import "github.com/deltakit/deltakit/internal/errors"

// ShardAssignment maps an active file's path to its shard index
// (spec.md §3). It is also accepted as --prev input for sticky re-planning.
type ShardAssignment map[string]int

// Balance metrics a PlannerConfig may optimize (spec.md §4.3).
const (
	BalanceBytes = "bytes"
	BalanceRows  = "rows"
)

// PlannerConfig enumerates the inputs to Plan (spec.md §4.3).
type PlannerConfig struct {
	Shards             int
	Balance            string
	CoLocateBy         []string
	StickyBy           []string
	MaxFilesPerShard   *int
	MaxBytesPerShard   *int64
	Seed               int64
	PreviousAssignment ShardAssignment
}

// Validate rejects configurations spec.md §4.3 names as InvalidConfig:
// shards < 1, an unrecognized balance metric, or a co_locate_by/sticky_by
// column absent from the table's partition schema.
func (c PlannerConfig) Validate(partitionColumns []string) error {
	if c.Shards < 1 {
		return errors.New(ErrInvalidConfig, "shards must be >= 1", nil)
	}
	if c.Balance != BalanceBytes && c.Balance != BalanceRows {
		return errors.New(ErrInvalidConfig, "balance must be \"bytes\" or \"rows\"", nil).AddContext("balance", c.Balance)
	}

	known := make(map[string]bool, len(partitionColumns))
	for _, col := range partitionColumns {
		known[col] = true
	}
	for _, col := range c.CoLocateBy {
		if !known[col] {
			return errors.New(ErrInvalidConfig, "unknown co_locate_by partition column", nil).AddContext("column", col)
		}
	}
	for _, col := range c.StickyBy {
		if !known[col] {
			return errors.New(ErrInvalidConfig, "unknown sticky_by partition column", nil).AddContext("column", col)
		}
	}

	if c.MaxFilesPerShard != nil && *c.MaxFilesPerShard < 1 {
		return errors.New(ErrInvalidConfig, "max_files_per_shard must be positive", nil)
	}
	if c.MaxBytesPerShard != nil && *c.MaxBytesPerShard < 1 {
		return errors.New(ErrInvalidConfig, "max_bytes_per_shard must be positive", nil)
	}
	return nil
}
