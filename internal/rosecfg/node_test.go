package rosecfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeSetGetUnset(t *testing.T) {
	node := NewNode()
	node.Set([]string{"env", "FOO"}, "bar")

	require.NotNil(t, node.Get("env", "FOO"))
	assert.Equal(t, "bar", node.GetValue([]string{"env", "FOO"}, "fallback"))
	assert.Equal(t, "fallback", node.GetValue([]string{"env", "MISSING"}, "fallback"))

	node.SetState([]string{"env", "FOO"}, "bar", StateIgnored)
	assert.Equal(t, "fallback", node.GetValue([]string{"env", "FOO"}, "fallback"))

	node.Unset("env", "FOO")
	assert.Nil(t, node.Get("env", "FOO"))
	assert.Empty(t, node.Get("env").Keys())
}

func TestNodeKeysPreserveInsertionOrder(t *testing.T) {
	node := NewNode()
	for _, key := range []string{"zeta", "alpha", "mid"} {
		node.Set([]string{"sec", key}, "v")
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, node.Get("sec").Keys())
}

func TestNodeMerge(t *testing.T) {
	base := NewNode()
	base.Set([]string{"env", "FOO"}, "bar")
	base.Set([]string{"env", "KEEP"}, "yes")
	base.Set([]string{"opts"}, "a")

	overlay := NewNode()
	overlay.Set([]string{"env", "FOO"}, "overridden")
	overlay.SetState([]string{"env", "NEW"}, "added", StateIgnored)

	base.Merge(overlay)
	assert.Equal(t, "overridden", base.Get("env", "FOO").Value)
	assert.Equal(t, "yes", base.Get("env", "KEEP").Value)
	assert.Equal(t, StateIgnored, base.Get("env", "NEW").State)
	assert.Equal(t, "a", base.Get("opts").Value)
}

func TestNodeCopyIsDeep(t *testing.T) {
	node := NewNode()
	node.Set([]string{"env", "FOO"}, "bar").Comments = []string{" c"}

	dup := node.Copy()
	dup.Set([]string{"env", "FOO"}, "changed")
	dup.Get("env", "FOO").Comments[0] = " mutated"

	assert.Equal(t, "bar", node.Get("env", "FOO").Value)
	assert.Equal(t, []string{" c"}, node.Get("env", "FOO").Comments)
}

func TestParseStatePrefix(t *testing.T) {
	for _, tc := range []struct {
		in    string
		name  string
		state State
	}{
		{"key", "key", StateNormal},
		{"!key", "key", StateIgnored},
		{"!!key", "key", StateTriggerIgnored},
	} {
		name, state := ParseStatePrefix(tc.in)
		assert.Equal(t, tc.name, name)
		assert.Equal(t, tc.state, state)
		assert.Equal(t, tc.in, state.Prefix()+name)
	}
}

func TestWalkSettings(t *testing.T) {
	node := NewNode()
	node.Set([]string{"opts"}, "a")
	node.Set([]string{"env", "FOO"}, "bar")
	node.Set([]string{"env", "BAR"}, "baz")

	var paths [][]string
	node.WalkSettings(func(keys []string, _ *Node) {
		paths = append(paths, keys)
	})
	assert.Equal(t, [][]string{{"opts"}, {"env", "FOO"}, {"env", "BAR"}}, paths)
}
