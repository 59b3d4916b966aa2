// Package rose is the merge-and-resolve engine for rose-suite.conf workflow
// configurations.
//
// It layers a base configuration file, optional fragment files, command line
// defines and template variable overrides into one tree, resolves which of
// the mutually exclusive templating sections is active, expands environment
// variable references, injects the standard ROSE_* variables and converts
// template variable strings into typed values. The result is a Settings
// value consumed by the host workflow engine's templating step.
//
// Independently of resolution, the engine records the CLI options used at
// install time to opt/rose-suite-cylc-install.conf in the run directory so
// that a later reinstall reproduces and extends them, and dumps a
// timestamped audit snapshot of every resolution under log/conf/.
//
// The engine never consults the process environment itself: every operation
// takes an explicit environ mapping which it reads and, for resolved [env]
// entries, writes back. The caller decides whether to export the result.
package rose
