// Package cli wires deltakit's commands atop internal/objstore,
// internal/deltalog, and internal/shardplan. No command implements core
// algorithmics; each is a thin translation layer (spec.md §1's
// "out of scope: external collaborators").
package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "deltakit",
	Short: "Read-only inspection and planning toolkit for Delta Lake tables",
	Long: `deltakit answers operational questions about a Delta Lake table --
what changed between two versions, how balanced are partitions, which
files are orphans, how files should be compacted, and how active files
should be deterministically assigned to K shards for distributed
training -- without ever mutating the table.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			logger := zerolog.Ctx(cmd.Context()).Level(zerolog.ErrorLevel)
			cmd.SetContext(logger.WithContext(cmd.Context()))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "emit machine-readable JSON")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress human-readable log output")

	rootCmd.AddCommand(
		lsCmd,
		rowcountCmd,
		manifestCmd,
		vacuumDryRunCmd,
		partitionHealthCmd,
		compactPlanCmd,
		diffCmd,
		schemaGuardCmd,
		driftCmd,
		footprintCmd,
		dedupePlanCmd,
		zorderPlanCmd,
		shardManifestCmd,
		snapshotCmd,
	)
}

// ExecuteWithContext runs the root command with ctx attached, the way the
// teacher's cmd/icebox threads a logger into cli.ExecuteWithContext.
func ExecuteWithContext(ctx context.Context) error {
	rootCmd.SetContext(ctx)
	err := rootCmd.Execute()
	if err != nil {
		presentError(rootCmd, err)
	}
	return err
}
