package shardplan

import (
	"sort"

	"github.com/deltakit/deltakit/internal/errors"
)

// shardState tracks one shard's running load while balancing.
type shardState struct {
	index      int
	fileCount  int
	totalBytes int64
	load       int64
}

func feasible(s *shardState, g *group, cfg PlannerConfig) bool {
	if cfg.MaxFilesPerShard != nil && s.fileCount+len(g.files) > *cfg.MaxFilesPerShard {
		return false
	}
	if cfg.MaxBytesPerShard != nil && s.totalBytes+g.bytes > *cfg.MaxBytesPerShard {
		return false
	}
	return true
}

// betterCandidate implements spec.md §4.3 step 3's selection rule: lowest
// load first, then the preferred shard, then lowest index.
func betterCandidate(cand, cur *shardState, preferred int, hasPreferred bool) bool {
	if cand.load != cur.load {
		return cand.load < cur.load
	}
	candPreferred := hasPreferred && cand.index == preferred
	curPreferred := hasPreferred && cur.index == preferred
	if candPreferred != curPreferred {
		return candPreferred
	}
	return cand.index < cur.index
}

// balanceGroups runs spec.md §4.3 step 3: groups are visited in
// descending load (ties broken by ascending canonical key), each placed
// on the lowest-load feasible shard, preferred-shard and lowest-index
// breaking ties. The spec states this selection as a priority-queue pop;
// a linear per-group scan over K shards realizes the same rule, since K
// is bounded and feasibility is evaluated fresh per group regardless of
// data structure.
func balanceGroups(groups []*group, cfg PlannerConfig, preferred map[string]int) (ShardAssignment, []*shardState, map[int][]*group, error) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].load != groups[j].load {
			return groups[i].load > groups[j].load
		}
		return groups[i].key < groups[j].key
	})

	shards := make([]*shardState, cfg.Shards)
	placed := make(map[int][]*group, cfg.Shards)
	for i := range shards {
		shards[i] = &shardState{index: i}
	}

	assignment := make(ShardAssignment)
	for _, g := range groups {
		pref, hasPref := preferred[g.key]

		best := -1
		for idx := 0; idx < cfg.Shards; idx++ {
			if !feasible(shards[idx], g, cfg) {
				continue
			}
			if best == -1 {
				best = idx
				continue
			}
			if betterCandidate(shards[idx], shards[best], pref, hasPref) {
				best = idx
			}
		}

		if best == -1 {
			return nil, nil, nil, infeasibleErr(cfg, shards, g)
		}

		shards[best].fileCount += len(g.files)
		shards[best].totalBytes += g.bytes
		shards[best].load += g.load
		placed[best] = append(placed[best], g)

		for _, f := range g.files {
			assignment[f.Path] = best
		}
	}

	return assignment, shards, placed, nil
}

// infeasibleErr reports which cap blocked every shard. Since the group
// was rejected everywhere, the emptiest shard's failing constraint names
// the binding cap (spec.md §4.3's Infeasible{cap-exceeded}).
func infeasibleErr(cfg PlannerConfig, shards []*shardState, g *group) error {
	emptiest := shards[0]
	for _, s := range shards[1:] {
		if s.load < emptiest.load {
			emptiest = s
		}
	}

	cap := "max_files_per_shard"
	if cfg.MaxBytesPerShard != nil && emptiest.totalBytes+g.bytes > *cfg.MaxBytesPerShard {
		cap = "max_bytes_per_shard"
	}
	return errors.New(ErrInfeasible, "no shard can accept group under the configured caps", nil).
		AddContext("cap", cap).
		AddContext("group", g.key)
}
