package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deltakit/deltakit/internal/deltalog"
	"github.com/deltakit/deltakit/internal/objstore"
)

// vacuumDryRunCmd reports, without deleting anything: objects present
// under the table root that are neither in _delta_log/ nor the active
// set (orphans), and tombstones whose retention window has elapsed.
// Grounded on vacuum_dry_run in the original, extended to honor
// tombstones(since) per spec.md §4.2 (see SPEC_FULL.md §13).
var vacuumDryRunCmd = &cobra.Command{
	Use:   "vacuum-dry-run <uri>",
	Short: "Report orphan files and retention-eligible tombstones",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		replayer, reader, err := openReplayer(ctx, args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		snap, err := replayer.SnapshotAt(ctx, nil)
		if err != nil {
			return err
		}

		retentionDays, _ := cmd.Flags().GetInt("retention-days")
		cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour).UnixMilli()

		orphans, err := findOrphans(ctx, reader, replayer, snap)
		if err != nil {
			return err
		}

		var eligible []deltalog.Tombstone
		for _, t := range snap.Tombstones(0) {
			if t.Remove.DeletionTimestamp <= cutoff {
				eligible = append(eligible, t)
			}
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return printJSON(map[string]interface{}{
				"version":            snap.Version(),
				"orphan_files":       orphans,
				"retention_eligible": eligible,
				"retention_days":     retentionDays,
			})
		}
		fmt.Printf("%d orphan file(s), %d tombstone(s) eligible for vacuum past %d-day retention\n",
			len(orphans), len(eligible), retentionDays)
		return nil
	},
}

func init() {
	vacuumDryRunCmd.Flags().Int("retention-days", 7, "tombstone retention window in days")
}

// findOrphans lists every object under the table root not under
// _delta_log/ and not present in the active set.
func findOrphans(ctx context.Context, reader *objstore.Reader, replayer *deltalog.Replayer, snap *deltalog.Snapshot) ([]string, error) {
	active := make(map[string]bool, len(snap.ActiveFiles()))
	for _, f := range snap.ActiveFiles() {
		active[f.Path] = true
	}

	var orphans []string
	root := replayer.TableRoot()
	logDir := root + "/_delta_log"

	err := reader.ListPrefix(ctx, root+"/", func(obj objstore.ObjectMeta) error {
		if len(obj.Path) >= len(logDir) && obj.Path[:len(logDir)] == logDir {
			return nil
		}
		rel := obj.Path
		if len(rel) > len(root)+1 {
			rel = rel[len(root)+1:]
		}
		if !active[rel] {
			orphans = append(orphans, obj.Path)
		}
		return nil
	})
	return orphans, err
}
