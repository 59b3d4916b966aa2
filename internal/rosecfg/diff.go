package rosecfg

import (
	"reflect"
	"strings"
)

// Diff is a structural difference between two configuration nodes, recorded
// as added, modified and removed leaf settings.
type Diff struct {
	added    []diffSetting
	modified []diffSetting
	removed  [][]string
}

type diffSetting struct {
	keys     []string
	value    string
	state    State
	comments []string
}

// NewDiff computes the diff that transforms old into new. Settings present
// only in new are recorded as added, settings present in both with different
// value, state or comments as modified (with new's content), and settings
// present only in old as removed.
func NewDiff(old, new *Node) *Diff {
	d := &Diff{}
	oldSettings := flatten(old)
	newKeys := map[string]bool{}

	new.WalkSettings(func(keys []string, node *Node) {
		path := joinKeys(keys)
		newKeys[path] = true
		entry := diffSetting{
			keys:     append([]string{}, keys...),
			value:    node.Value,
			state:    node.State,
			comments: node.Comments,
		}
		prev, ok := oldSettings[path]
		switch {
		case !ok:
			d.added = append(d.added, entry)
		case prev.value != node.Value || prev.state != node.State ||
			!reflect.DeepEqual(prev.comments, node.Comments):
			d.modified = append(d.modified, entry)
		}
	})

	old.WalkSettings(func(keys []string, _ *Node) {
		if !newKeys[joinKeys(keys)] {
			d.removed = append(d.removed, append([]string{}, keys...))
		}
	})
	return d
}

// DeleteRemoved drops all removed entries from the diff, so that applying it
// will not propagate deletions.
func (d *Diff) DeleteRemoved() {
	d.removed = nil
}

// ApplyTo replays the diff onto the node: added and modified settings are
// set, removed settings are unset.
func (d *Diff) ApplyTo(n *Node) {
	for _, entry := range d.added {
		set := n.SetState(entry.keys, entry.value, entry.state)
		set.Comments = entry.comments
	}
	for _, entry := range d.modified {
		set := n.SetState(entry.keys, entry.value, entry.state)
		set.Comments = entry.comments
	}
	for _, keys := range d.removed {
		n.Unset(keys...)
	}
}

func flatten(n *Node) map[string]diffSetting {
	out := map[string]diffSetting{}
	n.WalkSettings(func(keys []string, node *Node) {
		out[joinKeys(keys)] = diffSetting{
			keys:     append([]string{}, keys...),
			value:    node.Value,
			state:    node.State,
			comments: node.Comments,
		}
	})
	return out
}

func joinKeys(keys []string) string {
	return strings.Join(keys, "\x00")
}
