package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cylc/cylc-rose/internal/rose"
)

var installOpts rose.Options

var installCmd = &cobra.Command{
	Use:   "install <source-dir> <run-dir>",
	Short: "Install the Rose configuration of a workflow into its run directory",
	Long: `Install a workflow's Rose configuration: copy rose-suite.conf into the run
directory, record the CLI options used to opt/rose-suite-cylc-install.conf,
perform Rose file installation and write a timestamped snapshot of the
effective configuration under log/conf/.

Examples:
  cylc-rose install ~/src/my-workflow ~/cylc-run/my-workflow/run1
  cylc-rose install -O ops -S 'CYCLES=4' ~/src/my-workflow ~/cylc-run/my-workflow/run2`,
	Args: cobra.ExactArgs(2),
	RunE: runInstall,
}

func init() {
	addRoseOptionFlags(installCmd, &installOpts)
}

func runInstall(cmd *cobra.Command, args []string) error {
	return doInstall(args[0], args[1], &installOpts)
}

func doInstall(srcdir, rundir string, opts *rose.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	relPath, err := rose.PostInstall(srcdir, rundir, opts, buildEnviron())
	if err != nil {
		return err
	}
	if relPath == "" {
		fmt.Fprintln(os.Stdout, "no Rose configuration to install")
		return nil
	}
	fmt.Fprintf(os.Stdout, "effective configuration recorded in %s\n", relPath)
	return nil
}
