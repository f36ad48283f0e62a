package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// lsCmd summarizes a table's active set. Grounded on
// original_source/crates/deltakit-cli/src/main.rs's cmd_ls.
var lsCmd = &cobra.Command{
	Use:   "ls <uri>",
	Short: "Summarize a table's active file set",
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

		files := snap.ActiveFiles()
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return printJSON(map[string]interface{}{
				"uri":        args[0],
				"version":    snap.Version(),
				"files":      len(files),
				"bytes":      snap.TotalBytes(),
				"partitions": snap.PartitionColumns(),
			})
		}

		fmt.Printf("version %d: %d active files, %s, partitions: %v\n",
			snap.Version(), len(files), humanize.Bytes(uint64(snap.TotalBytes())), snap.PartitionColumns())
		return nil
	},
}

func init() {
	lsCmd.Flags().Int64("version", 0, "table version to inspect (default: latest)")
}
