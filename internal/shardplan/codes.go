// Package shardplan is deltakit's Shard Planner (spec.md §4.3): given a
// Snapshot and a PlannerConfig, it produces a deterministic assignment of
// active files to K shards.
package shardplan

import "github.com/deltakit/deltakit/internal/errors"

var (
	ErrMissingStatistics = errors.MustNewCode("shardplan.missing_statistics", errors.KindMissingStatistics)
	ErrInfeasible        = errors.MustNewCode("shardplan.infeasible", errors.KindInfeasible)
	ErrInvalidConfig     = errors.MustNewCode("shardplan.invalid_config", errors.KindInvalidConfig)
	// EmptyTable has no dedicated kind in spec.md §7's taxonomy; it is
	// treated as a degenerate InvalidConfig (see DESIGN.md).
	ErrEmptyTable = errors.MustNewCode("shardplan.empty_table", errors.KindInvalidConfig)
)
