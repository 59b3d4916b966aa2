package rosecfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// OptDirName is the sub-directory holding optional configuration fragments.
const OptDirName = "opt"

// Tree is a fully layered configuration: the base file plus any optional
// fragments and defines. It always has a root node, even when no base file
// was found.
type Tree struct {
	Node *Node
	// Files lists the configuration files loaded, in application order.
	Files []string
}

// defineRe matches a CLI define: an optional bracketed section, an optional
// ignore marker and a key=value pair.
var defineRe = regexp.MustCompile(`^(?:\[(.*)\])?(!{0,2})([^=\[\]]+?)\s*=\s*(.*)$`)

// ParseDefine splits a define string such as "[env]FOO=bar" or "!KEY=value"
// into its parts. ok is false when the string matches neither shape.
func ParseDefine(define string) (section, key, value string, state State, ok bool) {
	m := defineRe.FindStringSubmatch(define)
	if m == nil {
		return "", "", "", StateNormal, false
	}
	state = StateNormal
	switch m[2] {
	case "!":
		state = StateIgnored
	case "!!":
		state = StateTriggerIgnored
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[3]), m[4], state, true
}

// LoadTree loads the base configuration file of the given name from dir,
// overlays any optional fragment files selected by the combination of the
// base file's own opts setting and optKeys, then applies defines. A missing
// base file yields an empty tree. A fragment key wrapped in parentheses
// tolerates a missing fragment file.
func LoadTree(dir, name string, optKeys, defines []string) (*Tree, error) {
	tree := &Tree{Node: NewNode()}

	base := filepath.Join(dir, name)
	if _, err := os.Stat(base); err == nil {
		node, err := Load(base)
		if err != nil {
			return nil, err
		}
		tree.Node = node
		tree.Files = append(tree.Files, base)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	// The base file's own opts come first, then the caller's keys; the last
	// occurrence of a duplicate key wins its position.
	var keys []string
	if opts := tree.Node.Child("opts"); opts != nil && opts.State == StateNormal {
		keys = append(keys, strings.Fields(opts.Value)...)
	}
	keys = append(keys, optKeys...)
	keys = dedupLastWins(keys)

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	for _, key := range keys {
		optional := false
		if strings.HasPrefix(key, "(") && strings.HasSuffix(key, ")") {
			optional = true
			key = key[1 : len(key)-1]
		}
		path := filepath.Join(dir, OptDirName, fmt.Sprintf("%s-%s%s", stem, key, filepath.Ext(name)))
		frag, err := Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			if optional {
				continue
			}
			return nil, fmt.Errorf("optional configuration %q not found: %w", key, err)
		}
		if err != nil {
			return nil, err
		}
		tree.Node.Merge(frag)
		tree.Files = append(tree.Files, path)
	}

	for _, define := range defines {
		section, key, value, state, ok := ParseDefine(define)
		if !ok {
			continue
		}
		keys := []string{key}
		if section != "" {
			keys = []string{section, key}
		}
		tree.Node.SetState(keys, value, state)
	}
	return tree, nil
}

func dedupLastWins(tokens []string) []string {
	var kept []string
	seen := map[string]bool{}
	for i := len(tokens) - 1; i >= 0; i-- {
		if !seen[tokens[i]] {
			seen[tokens[i]] = true
			kept = append(kept, tokens[i])
		}
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}
