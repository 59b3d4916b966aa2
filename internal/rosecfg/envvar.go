package rosecfg

import (
	"fmt"
	"strings"
)

// UnboundVariableError reports a $NAME reference with no binding in the
// supplied environment mapping.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("[UNDEFINED ENVIRONMENT VARIABLE] %s", e.Name)
}

// ExpandVars substitutes $NAME and ${NAME} references in s against environ,
// resolving left to right. A backslash-escaped dollar (`\$`) survives as a
// literal dollar. A reference to a name absent from environ returns an
// UnboundVariableError.
func ExpandVars(s string, environ map[string]string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && s[i+1] == '$' {
			b.WriteByte('$')
			i++
			continue
		}
		if c != '$' {
			b.WriteByte(c)
			continue
		}

		var name string
		if i+1 < len(s) && s[i+1] == '{' {
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			name = s[i+2 : i+2+end]
			i += 2 + end
			if name == "" {
				b.WriteString("${}")
				continue
			}
		} else {
			j := i + 1
			for j < len(s) && isNameByte(s[j], j == i+1) {
				j++
			}
			name = s[i+1 : j]
			i = j - 1
		}
		if name == "" {
			b.WriteByte('$')
			continue
		}
		value, ok := environ[name]
		if !ok {
			return "", &UnboundVariableError{Name: name}
		}
		b.WriteString(value)
	}
	return b.String(), nil
}

func isNameByte(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}
