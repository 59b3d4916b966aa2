package rosecfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseDefine(t *testing.T) {
	for _, tc := range []struct {
		in      string
		section string
		key     string
		value   string
		state   State
		ok      bool
	}{
		{"[env]FOO=bar", "env", "FOO", "bar", StateNormal, true},
		{"FOO=bar", "", "FOO", "bar", StateNormal, true},
		{"[env]!FOO=bar", "env", "FOO", "bar", StateIgnored, true},
		{"!!FOO=bar", "", "FOO", "bar", StateTriggerIgnored, true},
		{"[template variables]X=[1, 2]", "template variables", "X", "[1, 2]", StateNormal, true},
		{"FOO=", "", "FOO", "", StateNormal, true},
		{"no equals", "", "", "", StateNormal, false},
		{"", "", "", "", StateNormal, false},
	} {
		section, key, value, state, ok := ParseDefine(tc.in)
		require.Equal(t, tc.ok, ok, "input %q", tc.in)
		if !tc.ok {
			continue
		}
		assert.Equal(t, tc.section, section, "input %q", tc.in)
		assert.Equal(t, tc.key, key, "input %q", tc.in)
		assert.Equal(t, tc.value, value, "input %q", tc.in)
		assert.Equal(t, tc.state, state, "input %q", tc.in)
	}
}

func TestLoadTreeMissingBase(t *testing.T) {
	tree, err := LoadTree(t.TempDir(), "rose-suite.conf", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, tree.Files)
	assert.Empty(t, tree.Node.Keys())
}

func TestLoadTreeFragments(t *testing.T) {
	dir := t.TempDir()
	writeConf(t, filepath.Join(dir, "rose-suite.conf"), `opts=a
[env]
FOO=base
KEEP=yes
`)
	writeConf(t, filepath.Join(dir, "opt", "rose-suite-a.conf"), `[env]
FOO=from-a
`)
	writeConf(t, filepath.Join(dir, "opt", "rose-suite-b.conf"), `[env]
FOO=from-b
`)

	tree, err := LoadTree(dir, "rose-suite.conf", []string{"b"}, nil)
	require.NoError(t, err)

	// File opts apply first, CLI keys override.
	assert.Equal(t, "from-b", tree.Node.Get("env", "FOO").Value)
	assert.Equal(t, "yes", tree.Node.Get("env", "KEEP").Value)
	assert.Len(t, tree.Files, 3)
}

func TestLoadTreeDuplicateKeysLastWins(t *testing.T) {
	dir := t.TempDir()
	writeConf(t, filepath.Join(dir, "rose-suite.conf"), "opts=a b\n")
	writeConf(t, filepath.Join(dir, "opt", "rose-suite-a.conf"), "[env]\nX=a\n")
	writeConf(t, filepath.Join(dir, "opt", "rose-suite-b.conf"), "[env]\nX=b\n")

	// "a" is repeated on the CLI so it moves after "b".
	tree, err := LoadTree(dir, "rose-suite.conf", []string{"a"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", tree.Node.Get("env", "X").Value)
}

func TestLoadTreeMissingFragment(t *testing.T) {
	dir := t.TempDir()
	writeConf(t, filepath.Join(dir, "rose-suite.conf"), "[env]\nFOO=bar\n")

	_, err := LoadTree(dir, "rose-suite.conf", []string{"nope"}, nil)
	require.Error(t, err)

	// Parenthesised keys tolerate a missing fragment.
	tree, err := LoadTree(dir, "rose-suite.conf", []string{"(nope)"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "bar", tree.Node.Get("env", "FOO").Value)
}

func TestLoadTreeDefines(t *testing.T) {
	dir := t.TempDir()
	writeConf(t, filepath.Join(dir, "rose-suite.conf"), `[env]
FOO=file
`)

	tree, err := LoadTree(dir, "rose-suite.conf", nil, []string{
		"[env]FOO=cli",
		"[env]!SKIPPED=x",
		"ROOT=1",
		"not a define",
	})
	require.NoError(t, err)
	assert.Equal(t, "cli", tree.Node.Get("env", "FOO").Value)
	assert.Equal(t, StateIgnored, tree.Node.Get("env", "SKIPPED").State)
	assert.Equal(t, "1", tree.Node.Get("ROOT").Value)
}

func TestLoadTreeIgnoredOptsSetting(t *testing.T) {
	dir := t.TempDir()
	writeConf(t, filepath.Join(dir, "rose-suite.conf"), `!opts=a
[env]
FOO=bar
`)

	// Ignored opts select no fragments.
	tree, err := LoadTree(dir, "rose-suite.conf", nil, nil)
	require.NoError(t, err)
	assert.Len(t, tree.Files, 1)
	assert.Equal(t, "bar", tree.Node.Get("env", "FOO").Value)
}
