package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cylc/cylc-rose/internal/platform"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms <run-dir> <cycle-point>",
	Short: "Show the platform of each task's latest job at a cycle point",
	Long: `Read the workflow's job database and print, as YAML, the platform each
task's most recent job submission ran on at the given cycle point.

Example:
  cylc-rose platforms ~/cylc-run/my-workflow/run1 20260829T0000Z`,
	Args: cobra.ExactArgs(2),
	RunE: runPlatforms,
}

func runPlatforms(cmd *cobra.Command, args []string) error {
	platforms, err := platform.PlatformsFromTaskJobs(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(platforms)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, string(out))
	return nil
}
