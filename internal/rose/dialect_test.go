package rose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cylc/cylc-rose/internal/rosecfg"
)

func TestResolveDialect(t *testing.T) {
	node := rosecfg.NewNode()
	section, err := ResolveDialect(node)
	require.NoError(t, err)
	assert.Equal(t, TemplateSection, section)

	node.Set([]string{Jinja2Section, "FOO"}, "1")
	section, err = ResolveDialect(node)
	require.NoError(t, err)
	assert.Equal(t, Jinja2Section, section)
}

func TestResolveDialectMutuallyExclusive(t *testing.T) {
	node := rosecfg.NewNode()
	node.Set([]string{TemplateSection, "FOO"}, "1")
	node.Set([]string{EmpySection, "BAR"}, "2")

	_, err := ResolveDialect(node)
	var multi *MultipleTemplatingEnginesError
	require.ErrorAs(t, err, &multi)
	assert.Equal(t, []string{TemplateSection, EmpySection}, multi.Sections)
	assert.Contains(t, err.Error(), "more than one templating section")
}

func TestEngineFromSection(t *testing.T) {
	assert.Equal(t, "", EngineFromSection(TemplateSection))
	assert.Equal(t, "jinja2", EngineFromSection(Jinja2Section))
	assert.Equal(t, "empy", EngineFromSection(EmpySection))
}

func TestIdentifyTemplatingSection(t *testing.T) {
	assert.Equal(t, Jinja2Section, IdentifyTemplatingSection("jinja2:suite.rc"))
	assert.Equal(t, Jinja2Section, IdentifyTemplatingSection("jinja2"))
	assert.Equal(t, EmpySection, IdentifyTemplatingSection("empy"))
	assert.Equal(t, TemplateSection, IdentifyTemplatingSection(""))
	assert.Equal(t, TemplateSection, IdentifyTemplatingSection("template variables"))
}
