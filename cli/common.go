package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deltakit/deltakit/internal/deltalog"
	"github.com/deltakit/deltakit/internal/errors"
	"github.com/deltakit/deltakit/internal/objstore"
)

// ExitCode maps an error's taxonomy kind to the process exit code table
// in spec.md §6, for cmd/deltakit's main to report after ExecuteWithContext.
func ExitCode(err error) int {
	return exitCode(err)
}

// exitCode is ExitCode's unexported implementation.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	switch errors.Kind(err) {
	case errors.KindInvalidConfig:
		return 2
	case errors.KindVersionNotFound:
		return 3
	case errors.KindCorruptLog:
		return 4
	case errors.KindInfeasible, errors.KindMissingStatistics:
		return 5
	case errors.KindIoError, errors.KindConfigError, errors.KindUnsupportedProtocol:
		return 6
	default:
		return 1
	}
}

// presentError writes the spec.md §7 error envelope to stderr: a single
// human-readable line, or a JSON object when --json is set.
func presentError(cmd *cobra.Command, err error) {
	asJSON, _ := cmd.Flags().GetBool("json")
	kind := errors.Kind(err)

	if !asJSON {
		fmt.Fprintf(os.Stderr, "%s: %s\n", kind, err.Error())
		return
	}

	envelope := map[string]interface{}{
		"error": map[string]interface{}{
			"kind":    kind,
			"message": err.Error(),
		},
	}
	if e, ok := err.(*errors.Error); ok && len(e.Context) > 0 {
		envelope["error"].(map[string]interface{})["context"] = e.Context
	}
	enc, _ := json.Marshal(envelope)
	fmt.Fprintln(os.Stderr, string(enc))
}

// openReplayer constructs an Object Reader and wraps it in a Log Replayer
// for uri, the pattern every snapshot-consuming command shares.
func openReplayer(ctx context.Context, uri string) (*deltalog.Replayer, *objstore.Reader, error) {
	reader, err := objstore.New(ctx, uri, objstore.Options{})
	if err != nil {
		return nil, nil, err
	}
	root := strings.TrimSuffix(reader.TableRoot(), "/")
	return deltalog.New(reader, root, 0), reader, nil
}

// snapshotFlagVersion reads an optional --version flag into a *int64 for
// deltalog.Replayer.SnapshotAt (nil means "latest").
func snapshotFlagVersion(cmd *cobra.Command) *int64 {
	v, err := cmd.Flags().GetInt64("version")
	if err != nil || !cmd.Flags().Changed("version") {
		return nil
	}
	return &v
}

func parseColumnList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printJSON(v interface{}) error {
	enc, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(enc))
	return nil
}
