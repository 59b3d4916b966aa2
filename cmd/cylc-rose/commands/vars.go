package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cylc/cylc-rose/internal/rose"
)

var varsOpts rose.Options

var varsCmd = &cobra.Command{
	Use:   "vars [source-dir]",
	Short: "Resolve and print the Rose configuration for a workflow source",
	Long: `Resolve the layered Rose configuration of a workflow source directory and
print the environment variables, typed template variables and detected
templating engine as YAML.

Examples:
  cylc-rose vars
  cylc-rose vars ~/src/my-workflow -O ops -S 'CYCLES=4'
  cylc-rose vars -D '[env]FOO=bar'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVars,
}

func init() {
	addRoseOptionFlags(varsCmd, &varsOpts)
}

func runVars(cmd *cobra.Command, args []string) error {
	srcdir := "."
	if len(args) == 1 {
		srcdir = args[0]
	}

	if err := varsOpts.Validate(); err != nil {
		return err
	}

	settings, err := rose.GetRoseVars(srcdir, &varsOpts, buildEnviron())
	if err != nil {
		return err
	}

	out, err := marshalSettings(settings)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, string(out))
	return nil
}

// marshalSettings renders settings as YAML. The self-referential
// ROSE_SUITE_VARIABLES entry is replaced by its key list: YAML cannot
// represent the cycle and the keys are what a reader wants to see.
func marshalSettings(settings *rose.Settings) ([]byte, error) {
	templateVars := make(map[string]any, len(settings.TemplateVariables))
	for key, value := range settings.TemplateVariables {
		if key == rose.SuiteVariablesVar {
			continue
		}
		templateVars[key] = value
	}
	if _, ok := settings.TemplateVariables[rose.SuiteVariablesVar]; ok {
		keys := make([]string, 0, len(templateVars))
		for key := range templateVars {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		templateVars[rose.SuiteVariablesVar] = keys
	}

	return yaml.Marshal(rose.Settings{
		Env:                settings.Env,
		TemplateVariables:  templateVars,
		TemplatingDetected: settings.TemplatingDetected,
	})
}
