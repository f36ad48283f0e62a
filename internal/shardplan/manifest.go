package shardplan

import "sort"

// ManifestFile is one file entry within a ShardEntry, matching spec.md
// §6's stable JSON schema.
type ManifestFile struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	Rows *int64 `json:"rows"`
}

// ShardEntry is one shard's worth of assignment output.
type ShardEntry struct {
	Shard      int            `json:"shard"`
	Files      []ManifestFile `json:"files"`
	TotalBytes int64          `json:"total_bytes"`
	TotalRows  *int64         `json:"total_rows"`
}

// Manifest is the ShardManifest entity of spec.md §3, serialized exactly
// per §6's JSON schema.
type Manifest struct {
	Version     int64        `json:"version"`
	Shards      int          `json:"shards"`
	Balance     string       `json:"balance"`
	CoLocateBy  []string     `json:"co_locate_by"`
	StickyBy    []string     `json:"sticky_by"`
	Seed        int64        `json:"seed"`
	Assignments []ShardEntry `json:"assignments"`
}

// buildManifest renders the placed groups into the stable output shape.
// Within each shard, files are emitted in lexicographic path order
// (spec.md §4.3 step 3d); empty shards appear as empty lists, preserving
// their index (spec.md §4.3's Output contract).
func buildManifest(version int64, cfg PlannerConfig, placed map[int][]*group) Manifest {
	entries := make([]ShardEntry, cfg.Shards)
	for i := 0; i < cfg.Shards; i++ {
		entries[i] = buildShardEntry(i, placed[i])
	}

	return Manifest{
		Version:     version,
		Shards:      cfg.Shards,
		Balance:     cfg.Balance,
		CoLocateBy:  nonNil(cfg.CoLocateBy),
		StickyBy:    nonNil(cfg.StickyBy),
		Seed:        cfg.Seed,
		Assignments: entries,
	}
}

func buildShardEntry(index int, groups []*group) ShardEntry {
	files := []ManifestFile{}
	var totalBytes int64
	var totalRows int64
	allKnown := true

	for _, g := range groups {
		for _, f := range g.files {
			mf := ManifestFile{Path: f.Path, Size: f.Size}
			if f.Stats != nil && f.Stats.NumRecords != nil {
				rows := *f.Stats.NumRecords
				mf.Rows = &rows
				totalRows += rows
			} else {
				allKnown = false
			}
			files = append(files, mf)
			totalBytes += f.Size
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	entry := ShardEntry{Shard: index, Files: files, TotalBytes: totalBytes}
	if allKnown && len(files) > 0 {
		entry.TotalRows = &totalRows
	}
	return entry
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
