package shardplan

import (
	"math"
	"net/url"
	"strings"

	"github.com/deltakit/deltakit/internal/deltalog"
	"github.com/deltakit/deltakit/internal/errors"
)

// group is the atomic unit of shard assignment: every file sharing the
// same co_locate_by partition tuple lands on the same shard (spec.md
// §4.3 step 1).
type group struct {
	key   string
	files []deltalog.Add
	bytes int64
	load  int64 // balance-metric total: bytes or (possibly imputed) rows
}

// canonicalKey encodes a partition tuple as a stable string: declared
// columns in order, values URL-escaped, "null" for missing or null
// values (spec.md §4.3 step 1).
func canonicalKey(columns []string, values map[string]*string) string {
	if len(columns) == 0 {
		return ""
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		v, ok := values[col]
		if !ok || v == nil {
			parts[i] = "null"
			continue
		}
		parts[i] = url.QueryEscape(*v)
	}
	return strings.Join(parts, "/")
}

// formGroups buckets files by their co_locate_by tuple. An empty
// co_locate_by makes every file its own group, per spec.md §4.3 step 1.
func formGroups(files []deltalog.Add, coLocateBy []string, loadValues map[string]int64) []*group {
	if len(coLocateBy) == 0 {
		groups := make([]*group, len(files))
		for i, f := range files {
			groups[i] = &group{
				key:   "path:" + url.QueryEscape(f.Path),
				files: []deltalog.Add{f},
				bytes: f.Size,
				load:  loadValues[f.Path],
			}
		}
		return groups
	}

	index := make(map[string]*group)
	var order []string
	for _, f := range files {
		key := canonicalKey(coLocateBy, f.PartitionValues)
		g, ok := index[key]
		if !ok {
			g = &group{key: key}
			index[key] = g
			order = append(order, key)
		}
		g.files = append(g.files, f)
		g.bytes += f.Size
		g.load += loadValues[f.Path]
	}

	groups := make([]*group, len(order))
	for i, key := range order {
		groups[i] = index[key]
	}
	return groups
}

// computeLoadValues resolves each file's contribution to the balance
// objective. For balance=rows, a file missing stats is imputed from the
// global bytes-per-row ratio of files that do carry stats; if no file
// carries stats, the planner fails MissingStatistics (spec.md §4.3's
// objective, worked through in §8 scenario 6).
func computeLoadValues(files []deltalog.Add, balance string) (map[string]int64, error) {
	loads := make(map[string]int64, len(files))

	if balance == BalanceBytes {
		for _, f := range files {
			loads[f.Path] = f.Size
		}
		return loads, nil
	}

	var statRows, statBytes int64
	var missing []deltalog.Add
	for _, f := range files {
		if f.Stats != nil && f.Stats.NumRecords != nil {
			loads[f.Path] = *f.Stats.NumRecords
			statRows += *f.Stats.NumRecords
			statBytes += f.Size
			continue
		}
		missing = append(missing, f)
	}

	if len(missing) == 0 {
		return loads, nil
	}
	if statBytes == 0 {
		return nil, errors.New(ErrMissingStatistics, "no active file carries row statistics", nil)
	}

	ratio := float64(statRows) / float64(statBytes)
	for _, f := range missing {
		loads[f.Path] = int64(math.Round(float64(f.Size) * ratio))
	}
	return loads, nil
}
