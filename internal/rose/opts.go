package rose

import (
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/cylc/cylc-rose/internal/logging"
	"github.com/cylc/cylc-rose/internal/rosecfg"
)

// OptConfKeysEnvVar supplies additional optional configuration keys as a
// space separated list, at the lowest merge precedence after file opts.
const OptConfKeysEnvVar = "ROSE_SUITE_OPT_CONF_KEYS"

// SimplifyOptsString de-duplicates a space delimited option list. Each key
// keeps the position of its last occurrence; all other order is preserved.
//
//	"a b a"     -> "b a"
//	"a b c d b" -> "a c d b"
func SimplifyOptsString(opts string) string {
	tokens := strings.Fields(opts)
	var keptReversed []string
	seen := map[string]bool{}
	for i := len(tokens) - 1; i >= 0; i-- {
		if !seen[tokens[i]] {
			seen[tokens[i]] = true
			keptReversed = append(keptReversed, tokens[i])
		}
	}
	for i, j := 0, len(keptReversed)-1; i < j; i, j = i+1, j-1 {
		keptReversed[i], keptReversed[j] = keptReversed[j], keptReversed[i]
	}
	return strings.Join(keptReversed, " ")
}

// MergeOpts combines optional configuration keys in order of increasing
// priority: the opts setting already on the node (set via `--define
// "opts=A B C"`), the environ value of ROSE_SUITE_OPT_CONF_KEYS, then the
// CLI --opt-conf-key values. Later keys override the position of earlier
// duplicates.
func MergeOpts(node *rosecfg.Node, environ map[string]string, optConfKeys []string) string {
	var all []string
	if opts := node.Child("opts"); opts != nil {
		all = append(all, opts.Value)
	}
	if envKeys, ok := environ[OptConfKeysEnvVar]; ok {
		all = append(all, envKeys)
	}
	all = append(all, optConfKeys...)
	return SimplifyOptsString(strings.Join(all, " "))
}

// SplitOptConfKeys tokenizes an ROSE_SUITE_OPT_CONF_KEYS value with shell
// word splitting rules. A malformed value degrades to whitespace splitting.
func SplitOptConfKeys(value string) []string {
	if value == "" {
		return nil
	}
	fields, err := shell.Fields(value, nil)
	if err != nil {
		logging.Warn().
			Str("value", value).
			Err(err).
			Msg("could not shell-split optional config keys; falling back to whitespace split")
		return strings.Fields(value)
	}
	return fields
}
