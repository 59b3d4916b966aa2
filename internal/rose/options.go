package rose

import "strings"

// Options carries the pre-parsed command line values the engine consumes.
// The engine does not parse argv itself.
type Options struct {
	// OptConfKeys selects optional configuration fragments (-O).
	OptConfKeys []string
	// Defines are key=value overrides, optionally section scoped (-D).
	Defines []string
	// TemplateVars are key=value overrides for whichever templating
	// section is active (-S).
	TemplateVars []string
	// ClearInstallOptions requests deletion of any previously recorded
	// install options.
	ClearInstallOptions bool
}

// HasRoseOptions reports whether any Rose-specific override was supplied.
func (o *Options) HasRoseOptions() bool {
	if o == nil {
		return false
	}
	return len(o.OptConfKeys) > 0 || len(o.Defines) > 0 || len(o.TemplateVars) > 0
}

// Validate checks all the key=value overrides, -D and -S together, and
// aggregates every malformed one into a single error.
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	defines := append([]string{}, o.Defines...)
	defines = append(defines, o.TemplateVars...)
	return ValidateDefines(defines)
}

// ValidateDefines checks every define for a top-level "=" that is not part
// of a bracketed section header. All offenders are collected into one
// InvalidDefinesError rather than stopping at the first.
func ValidateDefines(defines []string) error {
	var bad []string
	for _, define := range defines {
		if !hasTopLevelEquals(define) {
			bad = append(bad, define)
		}
	}
	if len(bad) > 0 {
		return &InvalidDefinesError{Defines: bad}
	}
	return nil
}

func hasTopLevelEquals(define string) bool {
	rest := define
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return false
		}
		rest = rest[end+1:]
	}
	return strings.Contains(rest, "=")
}
