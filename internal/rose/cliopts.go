package rose

import (
	"fmt"

	"github.com/cylc/cylc-rose/internal/logging"
	"github.com/cylc/cylc-rose/internal/rosecfg"
)

// GetCLIOptsNode projects the command line overrides into a configuration
// node of the same shape as file-based configuration.
//
// A ROSE_ORIG_HOST define is always appended to both the generic defines and
// the template variable defines before processing, pinned with the install
// sentinel comment so later processing passes will not overwrite it.
//
// The opts entry records the merged optional configuration keys with an
// ignored state: inside an install record the opts line is metadata for the
// record merge, not a live fragment selector.
func GetCLIOptsNode(srcdir string, opts *Options, environ map[string]string) (*rosecfg.Node, error) {
	if opts == nil {
		opts = &Options{}
	}
	host := getHost()

	defines := append([]string{}, opts.Defines...)
	defines = append(defines, fmt.Sprintf("[env]%s=%s", OrigHostVar, host))
	templateVars := append([]string{}, opts.TemplateVars...)
	templateVars = append(templateVars, fmt.Sprintf("%s=%s", OrigHostVar, host))

	node := rosecfg.NewNode()

	for _, define := range defines {
		section, key, value, state, ok := rosecfg.ParseDefine(define)
		if !ok {
			// Historical permissive behaviour: malformed defines are
			// passed through unchanged elsewhere, not rejected here.
			logging.Debug().Str("define", define).Msg("unrecognised define left unprojected")
			continue
		}
		if section == "" && state != rosecfg.StateNormal {
			logging.Warn().Msg("CLI opts set to ignored or trigger-ignored will be ignored.")
			continue
		}
		keys := []string{key}
		if section != "" {
			keys = []string{section, key}
		}
		node.SetState(keys, value, state)
	}

	// Template variable defines carry no section; route them to whichever
	// templating section the source configuration makes active.
	tvSection := TemplateSection
	if ConfigFileExists(srcdir) {
		tree, err := rosecfg.LoadTree(srcdir, SuiteConfName, opts.OptConfKeys, opts.Defines)
		if err != nil {
			return nil, err
		}
		tvSection, err = ResolveDialect(tree.Node)
		if err != nil {
			return nil, err
		}
	}
	for _, tv := range templateVars {
		_, key, value, state, ok := rosecfg.ParseDefine(tv)
		if !ok {
			logging.Debug().Str("define", tv).Msg("unrecognised template variable define left unprojected")
			continue
		}
		node.SetState([]string{tvSection, key}, value, state)
	}

	// Pin the host-origin defines against later override passes.
	for _, keys := range [][]string{{"env", OrigHostVar}, {tvSection, OrigHostVar}} {
		if setting := node.Get(keys...); setting != nil {
			setting.Comments = []string{OrigHostInstalledComment}
		}
	}

	optsValue := MergeOpts(node, environ, opts.OptConfKeys)
	node.SetState([]string{"opts"}, optsValue, rosecfg.StateIgnored)

	return node, nil
}
