package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/deltakit/deltakit/internal/deltalog"
)

// dedupePlanCmd flags active files sharing identical (partition values,
// size) as candidate exact duplicates: a cheap log-only heuristic
// consistent with the Non-goals' "no row-level scan of data files".
// Supplements the spec; never proposes automatic removal.
var dedupePlanCmd = &cobra.Command{
	Use:   "dedupe-plan <uri>",
	Short: "Flag active files that look like exact duplicates by size and partition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		replayer, reader, err := openReplayer(ctx, args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		snap, err := replayer.SnapshotAt(ctx, snapshotFlagVersion(cmd))
		if err != nil {
			return err
		}

		by, _ := cmd.Flags().GetString("by")
		cols := parseColumnList(by)
		if len(cols) == 0 {
			cols = snap.PartitionColumns()
		}

		groups := dedupeCandidates(snap.ActiveFiles(), cols)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return printJSON(groups)
		}
		for _, g := range groups {
			cmd.Printf("%s size=%d: %v\n", keyLabel(g.Key), g.Size, g.Files)
		}
		return nil
	},
}

func init() {
	dedupePlanCmd.Flags().Int64("version", 0, "table version to inspect (default: latest)")
	dedupePlanCmd.Flags().String("by", "", "comma-separated partition columns (default: table's partition columns)")
}

// DedupeGroup is a set of active files sharing (partition tuple, size).
type DedupeGroup struct {
	Key   string   `json:"key"`
	Size  int64    `json:"size"`
	Files []string `json:"files"`
}

func dedupeCandidates(files []deltalog.Add, cols []string) []DedupeGroup {
	type sig struct {
		key  string
		size int64
	}
	byGroup := make(map[sig][]string)
	var order []sig
	for _, f := range files {
		s := sig{key: groupKeyFor(f, cols), size: f.Size}
		if _, ok := byGroup[s]; !ok {
			order = append(order, s)
		}
		byGroup[s] = append(byGroup[s], f.Path)
	}

	var groups []DedupeGroup
	for _, s := range order {
		if len(byGroup[s]) < 2 {
			continue
		}
		paths := byGroup[s]
		sort.Strings(paths)
		groups = append(groups, DedupeGroup{Key: s.key, Size: s.size, Files: paths})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Key != groups[j].Key {
			return groups[i].Key < groups[j].Key
		}
		return groups[i].Size < groups[j].Size
	})
	return groups
}
