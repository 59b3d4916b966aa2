package rose

import (
	"strings"

	"github.com/cylc/cylc-rose/internal/logging"
	"github.com/cylc/cylc-rose/internal/rosecfg"
)

// The three mutually exclusive templating sections. TemplateSection is the
// canonical name; the others are legacy, engine-qualified names.
const (
	TemplateSection = "template variables"
	Jinja2Section   = "jinja2:suite.rc"
	EmpySection     = "empy:suite.rc"

	legacySectionSuffix = ":suite.rc"
)

// TemplatingSections lists the candidate section names in a fixed order.
var TemplatingSections = []string{TemplateSection, Jinja2Section, EmpySection}

// ResolveDialect inspects a configuration node for the templating sections.
// Exactly one may be present; if none is, the canonical section name is
// returned so that later steps have somewhere to write template variables.
func ResolveDialect(node *rosecfg.Node) (string, error) {
	var defined []string
	for _, section := range TemplatingSections {
		if node.Has(section) {
			defined = append(defined, section)
		}
	}
	switch len(defined) {
	case 0:
		return TemplateSection, nil
	case 1:
		return defined[0], nil
	default:
		return "", &MultipleTemplatingEnginesError{Sections: defined}
	}
}

// EngineFromSection maps a templating section name to the template engine it
// identifies. The canonical section reports no engine: historically it means
// "whatever the host engine's built-in default templating is".
func EngineFromSection(section string) string {
	if strings.HasSuffix(section, legacySectionSuffix) {
		return strings.TrimSuffix(section, legacySectionSuffix)
	}
	return ""
}

// IdentifyTemplatingSection maps a free text hint to a templating section
// name: any hint mentioning a known engine selects its legacy section,
// anything else the canonical section.
func IdentifyTemplatingSection(hint string) string {
	switch {
	case strings.Contains(hint, "jinja2"):
		return Jinja2Section
	case strings.Contains(hint, "empy"):
		return EmpySection
	default:
		return TemplateSection
	}
}

// SectionHeader formats a section name for display.
func SectionHeader(section string) string {
	return "[" + section + "]"
}

// warnDeprecatedSections logs when legacy templating sections are in use.
func warnDeprecatedSections(node *rosecfg.Node) {
	if node.Has(Jinja2Section) {
		logging.Warn().
			Str("section", SectionHeader(Jinja2Section)).
			Str("use", SectionHeader(TemplateSection)).
			Msg("deprecated templating section")
	}
	if node.Has(EmpySection) {
		logging.Warn().
			Str("section", SectionHeader(EmpySection)).
			Msg("empy support is deprecated and will be removed")
	}
}
