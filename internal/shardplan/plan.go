package shardplan

import (
	"github.com/deltakit/deltakit/internal/deltalog"
	"github.com/deltakit/deltakit/internal/errors"
)

// Plan runs the three-stage deterministic algorithm of spec.md §4.3 over
// snapshot's active files and returns the resulting Manifest. Plan never
// returns a partial manifest: any failure mode leaves the caller with
// only an error (spec.md §7's "Shard Planner fails fast").
func Plan(snapshot *deltalog.Snapshot, cfg PlannerConfig) (*Manifest, error) {
	if err := cfg.Validate(snapshot.PartitionColumns()); err != nil {
		return nil, err
	}

	files := snapshot.ActiveFiles()
	if len(files) == 0 {
		return nil, errors.New(ErrEmptyTable, "table has no active files to plan over", nil)
	}

	loadValues, err := computeLoadValues(files, cfg.Balance)
	if err != nil {
		return nil, err
	}

	groups := formGroups(files, cfg.CoLocateBy, loadValues)
	preferred := computePreferredShards(groups, cfg)

	_, _, placed, err := balanceGroups(groups, cfg, preferred)
	if err != nil {
		return nil, err
	}

	manifest := buildManifest(snapshot.Version(), cfg, placed)
	return &manifest, nil
}
