package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/deltakit/deltakit/internal/deltalog"
	"github.com/deltakit/deltakit/internal/errors"
)

// ErrZorderColumnsRequired flags a missing --by on zorder-plan.
var ErrZorderColumnsRequired = errors.MustNewCode("cli.zorder_columns_required", errors.KindInvalidConfig)

// zorderPlanCmd reports, per co-location group, the column(s) proposed
// for Z-order clustering and an estimate of the file count a hypothetical
// re-cluster would touch, without executing one. Supplements the spec
// (Non-goals: no table mutation).
var zorderPlanCmd = &cobra.Command{
	Use:   "zorder-plan <uri>",
	Short: "Propose Z-order clustering columns per partition group",
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
			return errors.New(ErrZorderColumnsRequired, "--by must name at least one clustering column", nil)
		}

		plan := zorderGroups(snap.ActiveFiles(), snap.PartitionColumns(), cols)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return printJSON(plan)
		}
		for _, g := range plan {
			cmd.Printf("%s: cluster by %v, %d files touched\n", keyLabel(g.PartitionKey), g.ClusterBy, g.FilesTouched)
		}
		return nil
	},
}

func init() {
	zorderPlanCmd.Flags().Int64("version", 0, "table version to inspect (default: latest)")
	zorderPlanCmd.Flags().String("by", "", "comma-separated columns to Z-order cluster by (required)")
}

// ZorderGroupPlan is one partition group's proposed clustering columns.
type ZorderGroupPlan struct {
	PartitionKey string   `json:"partition_key"`
	ClusterBy    []string `json:"cluster_by"`
	FilesTouched int      `json:"files_touched"`
}

func zorderGroups(files []deltalog.Add, partitionCols, clusterBy []string) []ZorderGroupPlan {
	byGroup := make(map[string]int)
	var order []string
	for _, f := range files {
		key := groupKeyFor(f, partitionCols)
		if _, ok := byGroup[key]; !ok {
			order = append(order, key)
		}
		byGroup[key]++
	}
	sort.Strings(order)

	plans := make([]ZorderGroupPlan, len(order))
	for i, key := range order {
		plans[i] = ZorderGroupPlan{PartitionKey: key, ClusterBy: clusterBy, FilesTouched: byGroup[key]}
	}
	return plans
}
