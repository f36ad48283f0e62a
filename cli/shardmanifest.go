package cli

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deltakit/deltakit/internal/shardplan"
)

// shardManifestCmd implements spec.md §6's shard-manifest row exactly:
// deterministic K-way file-to-shard assignment over a table's active set.
var shardManifestCmd = &cobra.Command{
	Use:   "shard-manifest <uri>",
	Short: "Deterministically assign active files to K shards",
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

		cfg, err := shardPlannerConfigFromFlags(cmd)
		if err != nil {
			return err
		}

		manifest, err := shardplan.Plan(snap, cfg)
		if err != nil {
			return err
		}
		zerolog.Ctx(ctx).Info().
			Int("shards", cfg.Shards).
			Int64("version", snap.Version()).
			Msg("manifest produced")

		return printJSON(manifest)
	},
}

func init() {
	shardManifestCmd.Flags().Int64("version", 0, "table version to inspect (default: latest)")
	shardManifestCmd.Flags().Int("shards", 1, "number of shards K")
	shardManifestCmd.Flags().String("by", "", "co_locate_by partition columns")
	shardManifestCmd.Flags().String("sticky-by", "", "sticky_by partition columns")
	shardManifestCmd.Flags().String("balance", shardplan.BalanceBytes, "balance metric: bytes|rows")
	shardManifestCmd.Flags().Int("max-files-per-shard", 0, "maximum files per shard (0 = unbounded)")
	shardManifestCmd.Flags().Int64("max-bytes-per-shard", 0, "maximum bytes per shard (0 = unbounded)")
	shardManifestCmd.Flags().String("prev", "", "path to a prior ShardManifest JSON for sticky re-planning")
	shardManifestCmd.Flags().Int64("seed", 0, "seed recorded in the output manifest")
}

func shardPlannerConfigFromFlags(cmd *cobra.Command) (shardplan.PlannerConfig, error) {
	shards, _ := cmd.Flags().GetInt("shards")
	by, _ := cmd.Flags().GetString("by")
	stickyBy, _ := cmd.Flags().GetString("sticky-by")
	balance, _ := cmd.Flags().GetString("balance")
	maxFiles, _ := cmd.Flags().GetInt("max-files-per-shard")
	maxBytes, _ := cmd.Flags().GetInt64("max-bytes-per-shard")
	prevPath, _ := cmd.Flags().GetString("prev")
	seed, _ := cmd.Flags().GetInt64("seed")

	cfg := shardplan.PlannerConfig{
		Shards:     shards,
		Balance:    balance,
		CoLocateBy: parseColumnList(by),
		StickyBy:   parseColumnList(stickyBy),
		Seed:       seed,
	}
	if maxFiles > 0 {
		cfg.MaxFilesPerShard = &maxFiles
	}
	if maxBytes > 0 {
		cfg.MaxBytesPerShard = &maxBytes
	}
	if prevPath != "" {
		prev, err := loadPreviousAssignment(prevPath)
		if err != nil {
			return cfg, err
		}
		cfg.PreviousAssignment = prev
	}
	return cfg, nil
}

// loadPreviousAssignment reads a prior ShardManifest JSON and flattens it
// into a ShardAssignment for sticky re-planning (spec.md §4.3 step 2).
func loadPreviousAssignment(path string) (shardplan.ShardAssignment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var manifest shardplan.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, err
	}

	assignment := make(shardplan.ShardAssignment)
	for _, entry := range manifest.Assignments {
		for _, f := range entry.Files {
			assignment[f.Path] = entry.Shard
		}
	}
	return assignment, nil
}
