package rose

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cylc/cylc-rose/internal/rosecfg"
)

// SuiteConfName is the base configuration file name.
const SuiteConfName = "rose-suite.conf"

// ConfigFileExists reports whether srcdir holds a base configuration file.
func ConfigFileExists(srcdir string) bool {
	if srcdir == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(srcdir, SuiteConfName))
	return err == nil && info.Mode().IsRegular()
}

// ConfigExists reports whether there is any Rose configuration to process:
// either a base configuration file in srcdir, or Rose overrides on the CLI.
func ConfigExists(srcdir string, opts *Options) bool {
	return ConfigFileExists(srcdir) || opts.HasRoseOptions()
}

// LoadConfigTree loads the layered configuration tree for srcdir.
//
// Optional fragment keys come from the environ value of
// ROSE_SUITE_OPT_CONF_KEYS (lowest precedence) and the CLI keys; the base
// file's own opts setting is combined underneath both by the tree loader.
//
// Template variable overrides cannot be routed before the active templating
// section is known, so when any are present the tree is loaded twice: the
// first pass determines the dialect, the overrides are reformatted as
// section-scoped defines, and the tree is reloaded from scratch with the
// augmented define list. The second pass is mandatory whenever template
// variable overrides exist; there are never more than two passes.
func LoadConfigTree(srcdir string, opts *Options, environ map[string]string) (*rosecfg.Tree, error) {
	var optKeys []string
	var defines []string
	if opts != nil {
		optKeys = append(optKeys, opts.OptConfKeys...)
		defines = append(defines, opts.Defines...)
	}
	optKeys = append(SplitOptConfKeys(environ[OptConfKeysEnvVar]), optKeys...)

	tree, err := rosecfg.LoadTree(srcdir, SuiteConfName, optKeys, defines)
	if err != nil {
		return nil, err
	}

	if opts != nil && len(opts.TemplateVars) > 0 {
		section, err := ResolveDialect(tree.Node)
		if err != nil {
			return nil, err
		}
		for _, tv := range opts.TemplateVars {
			defines = append(defines, fmt.Sprintf("[%s]%s", section, tv))
		}
		tree, err = rosecfg.LoadTree(srcdir, SuiteConfName, optKeys, defines)
		if err != nil {
			return nil, err
		}
	}

	warnDeprecatedSections(tree.Node)
	return tree, nil
}
