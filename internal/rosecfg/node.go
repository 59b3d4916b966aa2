package rosecfg

import "strings"

// State is the ignore marker attached to a section or setting.
type State int

const (
	// StateNormal marks an active node.
	StateNormal State = iota
	// StateIgnored marks a user-ignored node ("!" prefix).
	StateIgnored
	// StateTriggerIgnored marks a trigger-ignored node ("!!" prefix).
	StateTriggerIgnored
)

// Prefix returns the textual marker for the state ("", "!" or "!!").
func (s State) Prefix() string {
	switch s {
	case StateIgnored:
		return "!"
	case StateTriggerIgnored:
		return "!!"
	default:
		return ""
	}
}

// ParseStatePrefix splits the ignore marker off the front of a key or
// section name and returns the remainder with its state.
func ParseStatePrefix(s string) (string, State) {
	switch {
	case strings.HasPrefix(s, "!!"):
		return s[2:], StateTriggerIgnored
	case strings.HasPrefix(s, "!"):
		return s[1:], StateIgnored
	default:
		return s, StateNormal
	}
}

// Node is a single entry in a configuration tree. A leaf node holds a string
// Value; an interior node holds ordered children. Insertion order of children
// is preserved so that dumps and merges are deterministic.
type Node struct {
	Value    string
	State    State
	Comments []string

	keys     []string
	children map[string]*Node
}

// NewNode returns an empty interior node.
func NewNode() *Node {
	return &Node{children: map[string]*Node{}}
}

// IsLeaf reports whether the node holds a scalar value rather than children.
func (n *Node) IsLeaf() bool {
	return n.children == nil
}

// Keys returns the child keys in insertion order.
func (n *Node) Keys() []string {
	return n.keys
}

// Child returns the named child, or nil.
func (n *Node) Child(key string) *Node {
	if n.children == nil {
		return nil
	}
	return n.children[key]
}

// Has reports whether the named child exists.
func (n *Node) Has(key string) bool {
	return n.Child(key) != nil
}

// Get walks the key path and returns the node found, or nil.
func (n *Node) Get(keys ...string) *Node {
	cur := n
	for _, key := range keys {
		cur = cur.Child(key)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// GetValue returns the value at the key path if the node exists and is
// normal, otherwise the fallback.
func (n *Node) GetValue(keys []string, fallback string) string {
	node := n.Get(keys...)
	if node == nil || node.State != StateNormal {
		return fallback
	}
	return node.Value
}

// Set creates or overwrites the leaf at the key path with a normal state,
// creating interior nodes as required, and returns it.
func (n *Node) Set(keys []string, value string) *Node {
	return n.SetState(keys, value, StateNormal)
}

// SetState creates or overwrites the leaf at the key path with the given
// state, creating interior nodes as required, and returns it.
func (n *Node) SetState(keys []string, value string, state State) *Node {
	cur := n
	for _, key := range keys[:len(keys)-1] {
		cur = cur.ensureChild(key)
	}
	last := keys[len(keys)-1]
	child := cur.Child(last)
	if child == nil {
		child = &Node{}
		cur.attach(last, child)
	}
	child.Value = value
	child.State = state
	child.children = nil
	return child
}

// EnsureSection returns the named interior child, creating an empty one if
// it does not exist.
func (n *Node) EnsureSection(key string) *Node {
	return n.ensureChild(key)
}

// Unset removes the node at the key path, if present.
func (n *Node) Unset(keys ...string) {
	if len(keys) == 0 {
		return
	}
	parent := n.Get(keys[:len(keys)-1]...)
	if parent == nil || parent.children == nil {
		return
	}
	last := keys[len(keys)-1]
	if _, ok := parent.children[last]; !ok {
		return
	}
	delete(parent.children, last)
	for i, k := range parent.keys {
		if k == last {
			parent.keys = append(parent.keys[:i], parent.keys[i+1:]...)
			break
		}
	}
}

// Copy returns a deep copy of the node.
func (n *Node) Copy() *Node {
	dup := &Node{Value: n.Value, State: n.State}
	if n.Comments != nil {
		dup.Comments = append([]string{}, n.Comments...)
	}
	if n.children != nil {
		dup.children = map[string]*Node{}
		for _, key := range n.keys {
			dup.attach(key, n.children[key].Copy())
		}
	}
	return dup
}

// Merge overlays src onto the node. Leaf settings from src overwrite those
// already present; sections are merged recursively. Section state and
// comments follow src when src supplies them.
func (n *Node) Merge(src *Node) {
	for _, key := range src.keys {
		child := src.children[key]
		if child.IsLeaf() {
			set := n.SetState([]string{key}, child.Value, child.State)
			if child.Comments != nil {
				set.Comments = append([]string{}, child.Comments...)
			}
			continue
		}
		section := n.ensureChild(key)
		section.State = child.State
		if child.Comments != nil {
			section.Comments = append([]string{}, child.Comments...)
		}
		section.Merge(child)
	}
}

// WalkSettings visits every leaf setting in insertion order, passing the full
// key path from the receiver.
func (n *Node) WalkSettings(fn func(keys []string, node *Node)) {
	n.walk(nil, fn)
}

func (n *Node) walk(prefix []string, fn func(keys []string, node *Node)) {
	for _, key := range n.keys {
		child := n.children[key]
		keys := append(append([]string{}, prefix...), key)
		if child.IsLeaf() {
			fn(keys, child)
		} else {
			child.walk(keys, fn)
		}
	}
}

func (n *Node) ensureChild(key string) *Node {
	if n.children == nil {
		n.children = map[string]*Node{}
	}
	child := n.children[key]
	if child == nil {
		child = NewNode()
		n.attach(key, child)
	} else if child.IsLeaf() {
		// A leaf being addressed as a section becomes one.
		child.children = map[string]*Node{}
		child.Value = ""
	}
	return child
}

func (n *Node) attach(key string, child *Node) {
	if n.children == nil {
		n.children = map[string]*Node{}
	}
	if _, ok := n.children[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.children[key] = child
}
