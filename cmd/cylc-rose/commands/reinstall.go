package commands

import (
	"github.com/spf13/cobra"

	"github.com/cylc/cylc-rose/internal/rose"
)

var reinstallOpts rose.Options

var reinstallCmd = &cobra.Command{
	Use:   "reinstall <source-dir> <run-dir>",
	Short: "Reinstall the Rose configuration into an existing run directory",
	Long: `Reinstall a workflow's Rose configuration. Options given on this command
line are merged with the record of the previous install, so earlier choices
persist unless overridden, or dropped wholesale with
--clear-rose-install-options.

Examples:
  cylc-rose reinstall ~/src/my-workflow ~/cylc-run/my-workflow/run1
  cylc-rose reinstall --clear-rose-install-options ~/src/my-workflow ~/cylc-run/my-workflow/run1`,
	Args: cobra.ExactArgs(2),
	RunE: runReinstall,
}

func init() {
	addRoseOptionFlags(reinstallCmd, &reinstallOpts)
	reinstallCmd.Flags().BoolVar(&reinstallOpts.ClearInstallOptions, "clear-rose-install-options", false,
		"Discard the options recorded by previous installs")
}

func runReinstall(cmd *cobra.Command, args []string) error {
	return doInstall(args[0], args[1], &reinstallOpts)
}
