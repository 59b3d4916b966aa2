package rose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cylc/cylc-rose/internal/rosecfg"
)

func writeSuiteConf(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, SuiteConfName), []byte(content), 0o644))
}

func writeOptConf(t *testing.T, dir, key, content string) {
	t.Helper()
	optDir := filepath.Join(dir, rosecfg.OptDirName)
	require.NoError(t, os.MkdirAll(optDir, 0o755))
	path := filepath.Join(optDir, "rose-suite-"+key+".conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestConfigExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, ConfigFileExists(dir))
	assert.False(t, ConfigExists(dir, &Options{}))
	assert.True(t, ConfigExists(dir, &Options{Defines: []string{"[env]A=1"}}))

	writeSuiteConf(t, dir, "[env]\nFOO=bar\n")
	assert.True(t, ConfigFileExists(dir))
	assert.True(t, ConfigExists(dir, &Options{}))
}

func TestLoadConfigTreeLayering(t *testing.T) {
	dir := t.TempDir()
	writeSuiteConf(t, dir, `[env]
FOO=base
`)
	writeOptConf(t, dir, "ops", "[env]\nFOO=from-ops\n")
	writeOptConf(t, dir, "site", "[env]\nFOO=from-site\n")

	environ := map[string]string{OptConfKeysEnvVar: "ops"}
	opts := &Options{
		OptConfKeys: []string{"site"},
		Defines:     []string{"[env]EXTRA=defined"},
	}

	tree, err := LoadConfigTree(dir, opts, environ)
	require.NoError(t, err)

	// Environ keys apply before CLI keys, defines on top of everything.
	assert.Equal(t, "from-site", tree.Node.Get("env", "FOO").Value)
	assert.Equal(t, "defined", tree.Node.Get("env", "EXTRA").Value)
}

func TestLoadConfigTreeTemplateVarRouting(t *testing.T) {
	dir := t.TempDir()
	writeSuiteConf(t, dir, `[jinja2:suite.rc]
FOO='file'
BAR='kept'
`)

	opts := &Options{TemplateVars: []string{"FOO='cli'"}}
	tree, err := LoadConfigTree(dir, opts, map[string]string{})
	require.NoError(t, err)

	// The override lands in the active legacy section, not the canonical one.
	assert.Equal(t, "'cli'", tree.Node.Get(Jinja2Section, "FOO").Value)
	assert.Equal(t, "'kept'", tree.Node.Get(Jinja2Section, "BAR").Value)
	assert.False(t, tree.Node.Has(TemplateSection))
}

func TestLoadConfigTreeTemplateVarCanonicalDefault(t *testing.T) {
	dir := t.TempDir()
	writeSuiteConf(t, dir, "[env]\nFOO=bar\n")

	opts := &Options{TemplateVars: []string{"X=1"}}
	tree, err := LoadConfigTree(dir, opts, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "1", tree.Node.Get(TemplateSection, "X").Value)
}

func TestLoadConfigTreeMultipleEngines(t *testing.T) {
	dir := t.TempDir()
	writeSuiteConf(t, dir, `[jinja2:suite.rc]
A=1

[empy:suite.rc]
B=2
`)

	opts := &Options{TemplateVars: []string{"X=1"}}
	_, err := LoadConfigTree(dir, opts, map[string]string{})
	var multi *MultipleTemplatingEnginesError
	require.ErrorAs(t, err, &multi)
}
