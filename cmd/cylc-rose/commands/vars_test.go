package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cylc/cylc-rose/internal/rose"
)

func TestMarshalSettings(t *testing.T) {
	tvs := map[string]any{
		"ANSWER": 42,
		"NAME":   "Mars",
	}
	tvs[rose.SuiteVariablesVar] = tvs

	out, err := marshalSettings(&rose.Settings{
		Env:                map[string]string{"FOO": "bar"},
		TemplateVariables:  tvs,
		TemplatingDetected: "jinja2",
	})
	require.NoError(t, err)

	var decoded struct {
		Env                map[string]string `yaml:"env"`
		TemplateVariables  map[string]any    `yaml:"template_variables"`
		TemplatingDetected string            `yaml:"templating_detected"`
	}
	require.NoError(t, yaml.Unmarshal(out, &decoded))

	assert.Equal(t, "bar", decoded.Env["FOO"])
	assert.Equal(t, 42, decoded.TemplateVariables["ANSWER"])
	assert.Equal(t, "jinja2", decoded.TemplatingDetected)
	// The self reference flattens to its key list.
	assert.Equal(t,
		[]any{"ANSWER", "NAME"},
		decoded.TemplateVariables[rose.SuiteVariablesVar],
	)
}

func TestBuildEnviron(t *testing.T) {
	t.Setenv("CYLC_ROSE_TEST_VAR", "present")
	environ := buildEnviron()
	assert.Equal(t, "present", environ["CYLC_ROSE_TEST_VAR"])
}
