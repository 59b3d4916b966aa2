package rosecfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandVars(t *testing.T) {
	environ := map[string]string{
		"HOME": "/home/daisy",
		"USER": "daisy",
		"N1":   "one",
	}
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"$HOME/suite", "/home/daisy/suite"},
		{"${HOME}/suite", "/home/daisy/suite"},
		{"hi $USER and ${USER}", "hi daisy and daisy"},
		{`escaped \$HOME stays`, "escaped $HOME stays"},
		{"$N1", "one"},
		{"trailing dollar $", "trailing dollar $"},
		{"${}", "${}"},
		{"${unclosed", "${unclosed"},
		{"$1abc", "$1abc"},
	} {
		got, err := ExpandVars(tc.in, environ)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestExpandVarsUnbound(t *testing.T) {
	_, err := ExpandVars("$MISSING", map[string]string{})
	var unbound *UnboundVariableError
	require.ErrorAs(t, err, &unbound)
	assert.Equal(t, "MISSING", unbound.Name)
	assert.Equal(t, "[UNDEFINED ENVIRONMENT VARIABLE] MISSING", err.Error())
}
