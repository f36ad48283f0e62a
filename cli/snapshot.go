package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// snapshotCmd implements spec.md §6's snapshot row: a newline-delimited
// listing of active paths at a version, optionally written to --out
// instead of stdout.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot <uri>",
	Short: "Print active file paths at a version, newline-delimited",
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

		out := os.Stdout
		outPath, _ := cmd.Flags().GetString("out")
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		for _, file := range snap.ActiveFiles() {
			fmt.Fprintln(out, file.Path)
		}
		return nil
	},
}

func init() {
	snapshotCmd.Flags().Int64("version", 0, "table version to inspect (default: latest)")
	snapshotCmd.Flags().String("out", "", "write output to this path instead of stdout")
}
