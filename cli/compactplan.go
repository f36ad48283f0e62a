package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/deltakit/deltakit/internal/deltalog"
)

// compactPlanCmd bin-packs each co-location group's files into buckets at
// or under the target size, sorted ascending by size with a greedy
// first-fit-on-overflow, same as the original's plan_compaction. Buckets
// of a single file are dropped: there is nothing to compact.
var compactPlanCmd = &cobra.Command{
	Use:   "compact-plan <uri>",
	Short: "Propose compaction buckets for small files within each partition",
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
		targetMB, _ := cmd.Flags().GetInt("target-mb")
		target := int64(targetMB) * 1024 * 1024

		buckets := compactionBuckets(snap.ActiveFiles(), cols, target)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return printJSON(buckets)
		}
		for _, b := range buckets {
			cmd.Printf("%s: %d files, %d bytes\n", keyLabel(b.Key), len(b.Files), b.TotalBytes)
		}
		return nil
	},
}

func init() {
	compactPlanCmd.Flags().Int64("version", 0, "table version to inspect (default: latest)")
	compactPlanCmd.Flags().String("by", "", "comma-separated partition columns to group by")
	compactPlanCmd.Flags().Int("target-mb", 128, "target compaction bucket size in megabytes")
}

// CompactionBucket groups files proposed for a single compaction pass.
type CompactionBucket struct {
	Key        string   `json:"key"`
	Files      []string `json:"files"`
	TotalBytes int64    `json:"total_bytes"`
}

func compactionBuckets(files []deltalog.Add, by []string, target int64) []CompactionBucket {
	byGroup := make(map[string][]deltalog.Add)
	var order []string
	for _, f := range files {
		key := groupKeyFor(f, by)
		if _, ok := byGroup[key]; !ok {
			order = append(order, key)
		}
		byGroup[key] = append(byGroup[key], f)
	}
	sort.Strings(order)

	var buckets []CompactionBucket
	for _, key := range order {
		group := byGroup[key]
		sort.Slice(group, func(i, j int) bool { return group[i].Size < group[j].Size })

		var cur CompactionBucket
		cur.Key = key
		for _, f := range group {
			if cur.TotalBytes > 0 && cur.TotalBytes+f.Size > target {
				if len(cur.Files) >= 2 {
					buckets = append(buckets, cur)
				}
				cur = CompactionBucket{Key: key}
			}
			cur.Files = append(cur.Files, f.Path)
			cur.TotalBytes += f.Size
		}
		if len(cur.Files) >= 2 {
			buckets = append(buckets, cur)
		}
	}
	return buckets
}
