package rosecfg

import (
	"os"
	"path/filepath"
	"strings"
)

// Dump writes the node to a file, creating parent directories as required.
func Dump(node *Node, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(DumpString(node)), 0o644)
}

// DumpString renders the node in the on-disk format. Root-level settings come
// first, then sections, each in insertion order.
func DumpString(node *Node) string {
	var b strings.Builder
	writeComments(&b, node.Comments)

	// Root level settings.
	wroteSettings := false
	for _, key := range node.Keys() {
		child := node.Child(key)
		if !child.IsLeaf() {
			continue
		}
		writeSetting(&b, key, child)
		wroteSettings = true
	}

	first := !wroteSettings && len(node.Comments) == 0
	for _, key := range node.Keys() {
		child := node.Child(key)
		if child.IsLeaf() {
			continue
		}
		if !first {
			b.WriteString("\n")
		}
		first = false
		writeComments(&b, child.Comments)
		b.WriteString("[" + child.State.Prefix() + key + "]\n")
		for _, skey := range child.Keys() {
			setting := child.Child(skey)
			if setting.IsLeaf() {
				writeSetting(&b, skey, setting)
			}
		}
	}
	return b.String()
}

func writeComments(b *strings.Builder, comments []string) {
	for _, comment := range comments {
		b.WriteString("#" + comment + "\n")
	}
}

func writeSetting(b *strings.Builder, key string, node *Node) {
	writeComments(b, node.Comments)
	lines := strings.Split(node.Value, "\n")
	b.WriteString(node.State.Prefix() + key + "=" + lines[0] + "\n")
	indent := strings.Repeat(" ", len(key)+len(node.State.Prefix()))
	for _, line := range lines[1:] {
		b.WriteString(indent + "=" + line + "\n")
	}
}
