package checker

import (
	"strconv"
	"strings"
	"unicode/utf8"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// namedChildren returns the named children of n, skipping comments.
func namedChildren(n *ts.Node) []*ts.Node {
	if n == nil {
		return nil
	}
	count := n.NamedChildCount()
	out := make([]*ts.Node, 0, count)
	for i := uint(0); i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// firstNamed returns the first non-comment named child of n.
func firstNamed(n *ts.Node) *ts.Node {
	children := namedChildren(n)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// findChildByKind returns the first direct child of the given kind.
func findChildByKind(n *ts.Node, kind string) *ts.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// fieldOrKind returns the child in field, falling back to the first child of
// kind. Grammar versions disagree on which children carry field names.
func fieldOrKind(n *ts.Node, field, kind string) *ts.Node {
	if child := n.ChildByFieldName(field); child != nil {
		return child
	}
	return findChildByKind(n, kind)
}

func lastChild(n *ts.Node) *ts.Node {
	count := n.ChildCount()
	if count == 0 {
		return nil
	}
	return n.Child(count - 1)
}

func nodeID(n *ts.Node) TypeID {
	return TypeID{Start: uint32(n.StartByte()), End: uint32(n.EndByte())}
}

func nodeLocation(n *ts.Node) Location {
	pos := n.StartPosition()
	return Location{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1}
}

// unquoteString strips matching quotes from a string literal and resolves
// its escape sequences.
func unquoteString(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '"' && q != '\'' && q != '`') || s[len(s)-1] != q {
		return s
	}
	return unescape(s[1 : len(s)-1])
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case 'x':
			if i+2 < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
					b.WriteRune(rune(v))
					i += 2
					continue
				}
			}
			b.WriteByte('x')
		case 'u':
			r, width := parseUnicodeEscape(s[i+1:])
			if width == 0 {
				b.WriteByte('u')
				continue
			}
			b.WriteRune(r)
			i += width
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// parseUnicodeEscape reads the part after "\u": either four hex digits or a
// braced code point. It returns the rune and the number of bytes consumed.
func parseUnicodeEscape(s string) (rune, int) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return 0, 0
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return 0, 0
		}
		return rune(v), end + 1
	}
	if len(s) < 4 {
		return 0, 0
	}
	v, err := strconv.ParseUint(s[:4], 16, 32)
	if err != nil {
		return 0, 0
	}
	return rune(v), 4
}

// parseNumber converts a numeric literal, including hex, octal, binary and
// separator forms. BigInt literals are rejected.
func parseNumber(text string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(text), "_", "")
	if s == "" || strings.HasSuffix(s, "n") {
		return 0, false
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = strings.TrimSpace(s[1:])
	case '+':
		s = strings.TrimSpace(s[1:])
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		iv, ierr := strconv.ParseInt(s, 0, 64)
		if ierr != nil {
			return 0, false
		}
		v = float64(iv)
	}
	if neg {
		v = -v
	}
	return v, true
}
