// Package literal parses template variable values under a restricted
// literal-only grammar.
//
// The grammar accepts the Python literal forms (quoted strings, numbers,
// True/False/None, lists, tuples, dicts) plus the looser Jinja2 variants:
// lowercase true/false/none, bare comma-separated tuples, adjacent string
// concatenation across lines and, through a compatibility shim, integers
// with leading zeros. Anything else (function calls, arithmetic,
// conditionals, names) is rejected.
package literal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cylc/cylc-rose/internal/logging"
)

// Tuple is a parsed tuple literal. It is distinct from []any so that
// downstream consumers can tell `(1, 2, 3)` from `[1, 2, 3]`.
type Tuple []any

// InvalidLiteralError reports a value that is not a literal under the
// restricted grammar, naming the offending construct.
type InvalidLiteralError struct {
	Raw       string
	Construct string
}

func (e *InvalidLiteralError) Error() string {
	return fmt.Sprintf("Invalid literal: %s\n%s", e.Raw, e.Construct)
}

// Resolver converts raw strings into typed values. Leading-zero integer
// warnings are de-duplicated per distinct literal for the lifetime of the
// resolver, so one resolver should be used per resolution pass. The
// compatibility behaviour is baked into each instance; no shared parser
// state is touched.
type Resolver struct {
	warned map[string]bool
}

// NewResolver returns a resolver with an empty warning record.
func NewResolver() *Resolver {
	return &Resolver{warned: map[string]bool{}}
}

// isQuoteWrapped reports whether the trimmed value starts and ends with a
// quote character.
func isQuoteWrapped(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '\'' || first == '"') && (last == '\'' || last == '"')
}

// Resolve parses raw and returns its typed value: string, int, float64,
// bool, nil, []any, Tuple or map[string]any.
func (r *Resolver) Resolve(raw string) (any, error) {
	value := strings.TrimSpace(raw)
	// Fully quote-wrapped values take the strict parse: Python literals
	// only, no lowercase booleans, no leading-zero shim.
	strict := isQuoteWrapped(value)
	p := &parser{resolver: r, raw: value, strict: strict}
	if err := p.scan(value); err != nil {
		return nil, err
	}
	result, err := p.parseTop()
	if err != nil {
		return nil, err
	}
	return result, nil
}

// warnLeadingZeros logs one diagnostic per distinct offending literal,
// naming the old form and the normalized value.
func (r *Resolver) warnLeadingZeros(old, normalized string) {
	if r.warned[old] {
		return
	}
	r.warned[old] = true
	logging.Warn().
		Str("was", old).
		Str("now", normalized).
		Msg("Support for integers with leading zeros was dropped; please amend your Rose configuration")
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokInt
	tokFloat
	tokIdent
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	str  string // decoded value for tokString
}

type parser struct {
	resolver *Resolver
	raw      string
	strict   bool
	tokens   []token
	pos      int
}

func (p *parser) errf(format string, args ...any) error {
	return &InvalidLiteralError{Raw: p.raw, Construct: fmt.Sprintf(format, args...)}
}

func (p *parser) scan(s string) error {
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'' || c == '"':
			str, next, err := scanString(s, i)
			if err != nil {
				return p.errf("%s", err)
			}
			p.tokens = append(p.tokens, token{kind: tokString, text: s[i:next], str: str})
			i = next
		case c >= '0' && c <= '9' || c == '.' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9':
			text, kind := scanNumber(s, i)
			p.tokens = append(p.tokens, token{kind: kind, text: text})
			i += len(text)
		case isIdentByte(c, true):
			j := i
			for j < len(s) && isIdentByte(s[j], j == i) {
				j++
			}
			p.tokens = append(p.tokens, token{kind: tokIdent, text: s[i:j]})
			i = j
		case strings.IndexByte("()[]{},:+-", c) >= 0:
			p.tokens = append(p.tokens, token{kind: tokPunct, text: string(c)})
			i++
		default:
			return p.errf("unexpected character %q", c)
		}
	}
	p.tokens = append(p.tokens, token{kind: tokEOF})
	return nil
}

func (p *parser) peek() token  { return p.tokens[p.pos] }
func (p *parser) next() token  { t := p.tokens[p.pos]; p.pos++; return t }
func (p *parser) isPunct(s string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == s
}

// parseTop parses a whole value: a single literal, or a bare comma-separated
// tuple such as "1, 2, 3" or "1, true,".
func (p *parser) parseTop() (any, error) {
	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if !p.isPunct(",") {
		if t := p.peek(); t.kind != tokEOF {
			return nil, p.unexpected(t)
		}
		return first, nil
	}
	items := Tuple{first}
	for p.isPunct(",") {
		p.next()
		if p.peek().kind == tokEOF {
			break
		}
		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.unexpected(t)
	}
	return items, nil
}

func (p *parser) parseValue() (any, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		// Adjacent string literals concatenate, possibly across lines.
		s := t.str
		for p.peek().kind == tokString {
			s += p.next().str
		}
		return s, nil

	case tokInt:
		text := t.text
		if len(text) > 1 && text[0] == '0' {
			if p.strict {
				return nil, p.errf("integer with leading zero %q", text)
			}
			stripped := strings.TrimLeft(text, "0")
			if stripped == "" {
				stripped = "0"
			}
			p.resolver.warnLeadingZeros(text, stripped)
			text = stripped
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, p.errf("malformed integer %q", t.text)
		}
		return n, nil

	case tokFloat:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errf("malformed number %q", t.text)
		}
		return f, nil

	case tokIdent:
		return p.parseIdent(t)

	case tokPunct:
		switch t.text {
		case "+", "-":
			value, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			if t.text == "+" {
				switch value.(type) {
				case int, float64:
					return value, nil
				}
			} else {
				switch v := value.(type) {
				case int:
					return -v, nil
				case float64:
					return -v, nil
				}
			}
			return nil, p.errf("unary %q applied to non-number", t.text)
		case "[":
			return p.parseList()
		case "(":
			return p.parseTuple()
		case "{":
			return p.parseDict()
		}
	}
	return nil, p.unexpected(t)
}

func (p *parser) parseIdent(t token) (any, error) {
	name := t.text
	if p.strict {
		// The strict grammar takes the Python spellings only.
		switch name {
		case "True":
			return true, nil
		case "False":
			return false, nil
		case "None":
			return nil, nil
		}
		return nil, p.errf("name %q", name)
	}
	switch name {
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	case "None", "none":
		return nil, nil
	}
	if p.isPunct("(") {
		return nil, p.errf("function call %q", name)
	}
	if name == "if" || name == "else" {
		return nil, p.errf("conditional expression")
	}
	return nil, p.errf("name %q", name)
}

func (p *parser) parseList() (any, error) {
	items := []any{}
	for {
		if p.isPunct("]") {
			p.next()
			return items, nil
		}
		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.isPunct(",") {
			p.next()
			continue
		}
		if !p.isPunct("]") {
			return nil, p.unexpected(p.peek())
		}
	}
}

func (p *parser) parseTuple() (any, error) {
	if p.isPunct(")") {
		p.next()
		return Tuple{}, nil
	}
	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.isPunct(")") {
		// A parenthesised single value without a trailing comma is just
		// that value.
		p.next()
		return first, nil
	}
	items := Tuple{first}
	for p.isPunct(",") {
		p.next()
		if p.isPunct(")") {
			break
		}
		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if !p.isPunct(")") {
		return nil, p.unexpected(p.peek())
	}
	p.next()
	return items, nil
}

func (p *parser) parseDict() (any, error) {
	out := map[string]any{}
	for {
		if p.isPunct("}") {
			p.next()
			return out, nil
		}
		key, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		keyStr, ok := key.(string)
		if !ok {
			return nil, p.errf("non-string dictionary key %v", key)
		}
		if !p.isPunct(":") {
			return nil, p.unexpected(p.peek())
		}
		p.next()
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out[keyStr] = value
		if p.isPunct(",") {
			p.next()
			continue
		}
		if !p.isPunct("}") {
			return nil, p.unexpected(p.peek())
		}
	}
}

func (p *parser) unexpected(t token) error {
	switch {
	case t.kind == tokEOF:
		return p.errf("unexpected end of value")
	case t.kind == tokPunct && (t.text == "+" || t.text == "-"):
		return p.errf("arithmetic expression")
	case t.kind == tokPunct && t.text == "(":
		return p.errf("function call or grouping")
	case t.kind == tokIdent && (t.text == "if" || t.text == "else"):
		return p.errf("conditional expression")
	default:
		return p.errf("unexpected token %q", t.text)
	}
}

func isIdentByte(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

// scanString decodes a single quoted string literal starting at position i,
// returning the decoded text and the index just past the closing quote.
func scanString(s string, i int) (string, int, error) {
	quote := s[i]
	var b strings.Builder
	j := i + 1
	for j < len(s) {
		c := s[j]
		switch {
		case c == '\\' && j+1 < len(s):
			b.WriteByte(unescape(s[j+1]))
			j += 2
		case c == quote:
			return b.String(), j + 1, nil
		default:
			b.WriteByte(c)
			j++
		}
	}
	return "", 0, fmt.Errorf("unterminated string literal")
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

// scanNumber reads an integer or float token starting at i.
func scanNumber(s string, i int) (string, tokenKind) {
	j := i
	kind := tokInt
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j < len(s) && s[j] == '.' {
		kind = tokFloat
		j++
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
	}
	if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
		k := j + 1
		if k < len(s) && (s[k] == '+' || s[k] == '-') {
			k++
		}
		if k < len(s) && s[k] >= '0' && s[k] <= '9' {
			kind = tokFloat
			j = k
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
		}
	}
	return s[i:j], kind
}
