package rosecfg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// SyntaxError reports a malformed line in a configuration file.
type SyntaxError struct {
	File string
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// Load parses the configuration file at path.
func Load(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads a configuration from r. The name is used in error messages.
func Parse(r io.Reader, name string) (*Node, error) {
	root := NewNode()
	current := root
	var lastSetting *Node
	var comments []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			comments = nil

		case strings.HasPrefix(trimmed, "#"):
			comments = append(comments, strings.TrimPrefix(trimmed, "#"))

		case strings.HasPrefix(trimmed, "["):
			if !strings.HasSuffix(trimmed, "]") {
				return nil, &SyntaxError{name, lineno, "unterminated section header"}
			}
			header := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			lastSetting = nil
			if header == "" {
				current = root
				comments = nil
				continue
			}
			sname, state := ParseStatePrefix(header)
			section := root.EnsureSection(sname)
			section.State = state
			if comments != nil {
				section.Comments = append(section.Comments, comments...)
			}
			comments = nil
			current = section

		case strings.HasPrefix(trimmed, "="):
			// Continuation of the previous setting's value.
			if lastSetting == nil {
				return nil, &SyntaxError{name, lineno, "continuation line with no preceding setting"}
			}
			lastSetting.Value += "\n" + strings.TrimSpace(trimmed[1:])

		default:
			eq := strings.Index(trimmed, "=")
			if eq < 0 {
				return nil, &SyntaxError{name, lineno, fmt.Sprintf("expected key=value, got %q", trimmed)}
			}
			rawKey := strings.TrimSpace(trimmed[:eq])
			value := strings.TrimSpace(trimmed[eq+1:])
			key, state := ParseStatePrefix(rawKey)
			if key == "" {
				return nil, &SyntaxError{name, lineno, "setting with empty key"}
			}
			setting := current.SetState([]string{key}, value, state)
			if comments != nil {
				setting.Comments = append(setting.Comments, comments...)
			}
			comments = nil
			lastSetting = setting
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return root, nil
}
