package rose

import (
	"fmt"
	"strings"
)

// MultipleTemplatingEnginesError is raised when more than one of the
// mutually exclusive templating sections is present in one tree.
type MultipleTemplatingEnginesError struct {
	Sections []string
}

func (e *MultipleTemplatingEnginesError) Error() string {
	return fmt.Sprintf(
		"You should not define more than one templating section. You defined:\n\t%s",
		strings.Join(e.Sections, "; "),
	)
}

// ProcessError reports a failure to process a single configuration setting,
// carrying the offending key path, raw value and a ready-to-print hint.
type ProcessError struct {
	Keys  []string
	Value string
	Hint  string
	Err   error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s=%s: %s", strings.Join(e.Keys, "."), e.Value, e.Hint)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// InvalidDefinesError aggregates every malformed --define string found in
// one validation pass, never just the first.
type InvalidDefinesError struct {
	Defines []string
}

func (e *InvalidDefinesError) Error() string {
	return fmt.Sprintf(
		"Invalid defines: %s\nDefines must take the form `key=value`",
		strings.Join(e.Defines, ", "),
	)
}

// NotRoseSuiteError is raised when Rose-specific CLI options are supplied
// for a workflow that has no rose-suite.conf file.
type NotRoseSuiteError struct {
	SrcDir string
}

func (e *NotRoseSuiteError) Error() string {
	return fmt.Sprintf(
		"Rose options (-O, -D, -S) are only valid when a rose-suite.conf file is present: %s",
		e.SrcDir,
	)
}
