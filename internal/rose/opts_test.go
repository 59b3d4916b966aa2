package rose

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cylc/cylc-rose/internal/rosecfg"
)

func TestSimplifyOptsString(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"", ""},
		{"a", "a"},
		{"a b c", "a b c"},
		{"a b a", "b a"},
		{"a b c d b", "a c d b"},
		{"a b a b a a b b b c a b hello", "c a b hello"},
		{"  spaced   out  ", "spaced out"},
	} {
		assert.Equal(t, tc.want, SimplifyOptsString(tc.in), "input %q", tc.in)
	}
}

func TestMergeOpts(t *testing.T) {
	node := rosecfg.NewNode()
	node.Set([]string{"opts"}, "a b")
	environ := map[string]string{OptConfKeysEnvVar: "b c"}

	// Node opts, then environ, then CLI keys; the last occurrence of a
	// duplicate keeps its position.
	assert.Equal(t, "a b c", MergeOpts(node, environ, nil))
	assert.Equal(t, "b c a", MergeOpts(node, environ, []string{"a"}))
	assert.Equal(t, "a b c d", MergeOpts(node, environ, []string{"d"}))

	empty := rosecfg.NewNode()
	assert.Equal(t, "", MergeOpts(empty, map[string]string{}, nil))
	assert.Equal(t, "x", MergeOpts(empty, map[string]string{}, []string{"x"}))
}

func TestSplitOptConfKeys(t *testing.T) {
	assert.Nil(t, SplitOptConfKeys(""))
	assert.Equal(t, []string{"a", "b"}, SplitOptConfKeys("a b"))
	assert.Equal(t, []string{"one key", "two"}, SplitOptConfKeys(`"one key" two`))
	assert.Equal(t, []string{"it's"}, SplitOptConfKeys(`"it's"`))
}
