package rose

import (
	"os"

	"github.com/cylc/cylc-rose/internal/literal"
	"github.com/cylc/cylc-rose/internal/logging"
	"github.com/cylc/cylc-rose/internal/rosecfg"
)

// Standard variables the engine manages itself.
const (
	// OrigHostVar records the host the workflow was installed from.
	OrigHostVar = "ROSE_ORIG_HOST"
	// VersionVar records the Rose version in use.
	VersionVar = "ROSE_VERSION"
	// CylcVersionVar is the host engine's exclusive property. It is
	// removed from user configuration, never injected.
	CylcVersionVar = "CYLC_VERSION"
	// SuiteVariablesVar is the synthetic self-referential entry exposing
	// the whole template variable mapping to template code.
	SuiteVariablesVar = "ROSE_SUITE_VARIABLES"

	// OrigHostInstalledComment marks a ROSE_ORIG_HOST value pinned by an
	// install step; later passes must not overwrite it.
	OrigHostInstalledComment = " ROSE_ORIG_HOST set by cylc install."
)

// RoseVersion is the tool version injected as ROSE_VERSION. Set at build
// time via -ldflags.
var RoseVersion = "2.1.0"

// getHost is swappable for tests.
var getHost = func() string {
	host, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return host
}

// protectedVars are the variable names excluded from typed-value resolution.
var protectedVars = map[string]bool{
	OrigHostVar:    true,
	VersionVar:     true,
	CylcVersionVar: true,
}

// Settings is the engine's primary output.
type Settings struct {
	// Env maps environment variable names to their final expanded values.
	// Only normal-state entries are included.
	Env map[string]string `yaml:"env" json:"env"`
	// TemplateVariables maps template variable names to typed values,
	// plus the ROSE_SUITE_VARIABLES self reference.
	TemplateVariables map[string]any `yaml:"template_variables" json:"template_variables"`
	// TemplatingDetected identifies the template engine that should
	// process the workflow definition: "jinja2", "empy" or "" for none.
	// The canonical [template variables] section reports "" even though a
	// dialect is in effect; this mapping is historical and deliberate.
	TemplatingDetected string `yaml:"templating_detected" json:"templating_detected"`
}

// emptySettings returns the "nothing to do" result.
func emptySettings() *Settings {
	return &Settings{
		Env:               map[string]string{},
		TemplateVariables: map[string]any{},
	}
}

// ProcessConfigNode expands and types a loaded configuration node. The node
// is mutated in place: standard variables are injected, references expanded.
// Resolved [env] entries are written back into environ immediately so later
// keys (and the templating section, processed afterwards) can reference
// them.
func ProcessConfigNode(node *rosecfg.Node, environ map[string]string) (*Settings, error) {
	section, err := ResolveDialect(node)
	if err != nil {
		return nil, err
	}

	node.EnsureSection("env")
	node.EnsureSection(section)

	for _, secName := range []string{"env", section} {
		sec := node.Child(secName)
		injectStandardVars(secName, sec)
		if err := expandSection(secName, sec, environ); err != nil {
			return nil, err
		}
	}

	settings := &Settings{
		Env:                map[string]string{},
		TemplateVariables:  map[string]any{},
		TemplatingDetected: EngineFromSection(section),
	}
	for _, key := range node.Child("env").Keys() {
		if setting := node.Get("env", key); setting.State == rosecfg.StateNormal {
			settings.Env[key] = setting.Value
		}
	}

	resolver := literal.NewResolver()
	tvSection := node.Child(section)
	for _, key := range tvSection.Keys() {
		setting := tvSection.Child(key)
		if setting.State != rosecfg.StateNormal {
			continue
		}
		if protectedVars[key] {
			settings.TemplateVariables[key] = setting.Value
			continue
		}
		value, err := resolver.Resolve(setting.Value)
		if err != nil {
			return nil, &ProcessError{
				Keys:  []string{section, key},
				Value: setting.Value,
				Hint: "Invalid template variable" +
					"\nMust be a valid Python or Jinja2 literal" +
					` (note strings "must be quoted")`,
				Err: err,
			}
		}
		settings.TemplateVariables[key] = value
	}

	// One-level self reference: the completed mapping inserted into
	// itself. Maps share by reference, and the mapping is not mutated
	// after this point.
	settings.TemplateVariables[SuiteVariablesVar] = settings.TemplateVariables

	return settings, nil
}

// injectStandardVars sets or removes the protected variables on a section.
// A ROSE_ORIG_HOST pinned with the install sentinel comment is left alone so
// a value fixed at install time survives later passes run from another host.
func injectStandardVars(secName string, sec *rosecfg.Node) {
	host := getHost()
	for _, rep := range []struct {
		name   string
		value  string
		remove bool
	}{
		{OrigHostVar, host, false},
		{VersionVar, RoseVersion, false},
		{CylcVersionVar, "", true},
	} {
		existing := sec.Child(rep.name)
		sticky := rep.name == OrigHostVar &&
			existing != nil &&
			hasComment(existing, OrigHostInstalledComment)

		if existing != nil && !sticky {
			event := logging.Warn().
				Str("section", SectionHeader(secName)).
				Str("variable", rep.name).
				Str("discarded", existing.Value)
			if rep.remove {
				event.Msg("variable is managed by the workflow engine and has been removed")
			} else {
				event.Str("used", rep.value).
					Msg("user-defined value discarded for managed variable")
			}
		}
		switch {
		case rep.remove:
			sec.Unset(rep.name)
		case sticky:
			// Keep the pinned value and its sentinel comment.
		default:
			sec.Set([]string{rep.name}, rep.value)
		}
	}
}

// expandSection expands $VAR/${VAR} references in every setting of a
// section. Successful [env] expansions feed back into environ at once.
func expandSection(secName string, sec *rosecfg.Node, environ map[string]string) error {
	for _, key := range sec.Keys() {
		setting := sec.Child(key)
		expanded, err := rosecfg.ExpandVars(setting.Value, environ)
		if err != nil {
			return &ProcessError{
				Keys:  []string{secName, key},
				Value: setting.Value,
				Hint:  "could not expand environment variable reference",
				Err:   err,
			}
		}
		setting.Value = expanded
		if secName == "env" {
			environ[key] = expanded
		}
	}
	return nil
}

func hasComment(node *rosecfg.Node, comment string) bool {
	for _, c := range node.Comments {
		if c == comment {
			return true
		}
	}
	return false
}
