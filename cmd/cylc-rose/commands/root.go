// Package commands provides the CLI commands for cylc-rose.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cylc/cylc-rose/internal/logging"
	"github.com/cylc/cylc-rose/internal/rose"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	logLevel string
	envFile  string
)

var rootCmd = &cobra.Command{
	Use:   "cylc-rose",
	Short: "cylc-rose - Rose suite configuration bridge for Cylc workflows",
	Long: `cylc-rose reads layered Rose suite configurations (rose-suite.conf plus
optional fragments and CLI overrides) and resolves them into the environment
and template variables a Cylc workflow installation needs.

Run 'cylc-rose vars' to inspect the resolved settings for a workflow source
directory, or 'cylc-rose install' to record them into a run directory.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("loading %s: %w", envFile, err)
			}
		}
		cfg := logging.DefaultConfig()
		cfg.Level = logging.ParseLevel(logLevel)
		logging.Init(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "WARN", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load additional environment variables from this file")

	rootCmd.SetVersionTemplate(fmt.Sprintf("cylc-rose %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(varsCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(reinstallCmd)
	rootCmd.AddCommand(platformsCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// addRoseOptionFlags registers the Rose override flags shared by the
// configuration-consuming commands, bound to a fresh Options per command.
func addRoseOptionFlags(cmd *cobra.Command, opts *rose.Options) {
	cmd.Flags().StringArrayVarP(&opts.OptConfKeys, "opt-conf-key", "O", nil,
		"Use the optional configuration with this key (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Defines, "define", "D", nil,
		"Set [SECTION]KEY=VALUE, overriding file configuration (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.TemplateVars, "define-suite", "S", nil,
		"Set KEY=VALUE in the active templating section (repeatable)")
}

// buildEnviron snapshots the process environment as a map. The engine takes
// environ explicitly so resolution never depends on ambient process state.
func buildEnviron() map[string]string {
	environ := map[string]string{}
	for _, entry := range os.Environ() {
		if k, v, ok := strings.Cut(entry, "="); ok {
			environ[k] = v
		}
	}
	return environ
}
