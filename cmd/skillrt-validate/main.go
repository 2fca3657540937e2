// Command skillrt-validate spawns a skill binary and drives it through
// the protocol boundary checks from spec §8 without a full host
// attached, with a scratch in-memory data store standing in for
// data/read and data/write. After skill/load and skill/activate it
// checks that tools/list responds, an unknown tool call is rejected,
// setup/submit without setup/start is rejected, a trigger with a
// malformed regex is rejected at creation, and options/list responds.
// It reports pass/fail per check and exits non-zero on any failure.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var skillPath string
	cmd := &cobra.Command{
		Use:   "skillrt-validate",
		Short: "Run the skill runtime protocol boundary checks against a skill binary",
	}
	check := &cobra.Command{
		Use:   "check",
		Short: "Spawn the skill and run every boundary check",
		RunE: func(cmd *cobra.Command, args []string) error {
			if skillPath == "" {
				return fmt.Errorf("--skill is required")
			}
			return runChecks(cmd.Context(), skillPath)
		},
	}
	check.Flags().StringVar(&skillPath, "skill", "", "Path to the skill binary to validate")
	cmd.AddCommand(check)
	return cmd
}
