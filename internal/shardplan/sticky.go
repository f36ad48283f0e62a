package shardplan

// computePreferredShards implements spec.md §4.3 step 2: for each group,
// the preferred shard is the mode of the previous shard index among the
// group's files that appear in previous_assignment with a prior index
// < shards, ties broken by lowest shard index. A group with no such
// member has no preferred shard.
func computePreferredShards(groups []*group, cfg PlannerConfig) map[string]int {
	if len(cfg.PreviousAssignment) == 0 {
		return nil
	}

	preferred := make(map[string]int, len(groups))
	for _, g := range groups {
		counts := make(map[int]int)
		for _, f := range g.files {
			idx, ok := cfg.PreviousAssignment[f.Path]
			if !ok || idx < 0 || idx >= cfg.Shards {
				continue
			}
			counts[idx]++
		}
		if len(counts) == 0 {
			continue
		}

		best, bestCount := -1, -1
		for idx, count := range counts {
			if count > bestCount || (count == bestCount && idx < best) {
				best, bestCount = idx, count
			}
		}
		preferred[g.key] = best
	}
	return preferred
}
