package tree

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ParseError reports malformed Newick text.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("newick: %s at offset %d", e.Msg, e.Pos)
}

// Parse reads one tree in Newick notation. The trailing semicolon is
// optional. Labels may be quoted with ' (doubled to escape) or ", branch
// lengths follow ':' and [&&NHX:key=value:...] comments fill the attribute
// map; other bracketed comments are ignored.
func Parse(s string) (*Tree, error) {
	p := &parser{input: s}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("empty tree")
	}
	root, err := p.parseSubtree()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() == ';' {
		p.consume()
		p.skipSpace()
	}
	if !p.eof() {
		return nil, p.errorf("unexpected %q after tree", p.peek())
	}
	return root, nil
}

// Read parses a single tree from r.
func Read(r io.Reader) (*Tree, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(b))
}

func MustParse(s string) *Tree {
	t, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("tree: Parse(%q): %v", s, err))
	}
	return t
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parseSubtree() (*Tree, error) {
	t := New("")
	p.skipSpace()
	if p.peek() == '(' {
		p.consume()
		for closed := false; !closed; {
			child, err := p.parseSubtree()
			if err != nil {
				return nil, err
			}
			t.AddChild(child)
			p.skipSpace()
			switch {
			case p.peek() == ',':
				p.consume()
			case p.peek() == ')':
				p.consume()
				closed = true
			case p.eof():
				return nil, p.errorf("unclosed group")
			default:
				return nil, p.errorf("unexpected %q in group", p.peek())
			}
		}
	}
	if err := p.parseProps(t); err != nil {
		return nil, err
	}
	return t, nil
}

// parseProps reads the label, branch length and comments following a node.
func (p *parser) parseProps(t *Tree) error {
	p.skipSpace()
	name, err := p.parseLabel()
	if err != nil {
		return err
	}
	t.name = norm.NFC.String(name)
	for {
		p.skipSpace()
		switch p.peek() {
		case ':':
			p.consume()
			p.skipSpace()
			start := p.pos
			for !p.eof() && strings.ContainsRune("0123456789.eE+-", p.peek()) {
				p.consume()
			}
			f, err := strconv.ParseFloat(p.input[start:p.pos], 64)
			if err != nil {
				return &ParseError{Pos: start, Msg: "invalid branch length"}
			}
			t.Dist = f
		case '[':
			if err := p.parseComment(t); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (p *parser) parseLabel() (string, error) {
	switch q := p.peek(); q {
	case '\'', '"':
		start := p.pos
		p.consume()
		var b strings.Builder
		for {
			if p.eof() {
				return "", &ParseError{Pos: start, Msg: "unterminated quoted label"}
			}
			r := p.consume()
			if r == q {
				if q == '\'' && p.peek() == '\'' {
					p.consume()
					b.WriteRune('\'')
					continue
				}
				return b.String(), nil
			}
			b.WriteRune(r)
		}
	default:
		start := p.pos
		for !p.eof() && !strings.ContainsRune("(),:;[", p.peek()) {
			p.consume()
		}
		return strings.TrimSpace(p.input[start:p.pos]), nil
	}
}

func (p *parser) parseComment(t *Tree) error {
	start := p.pos
	p.consume() // eat [
	end := strings.IndexByte(p.input[p.pos:], ']')
	if end < 0 {
		return &ParseError{Pos: start, Msg: "unclosed comment"}
	}
	body := p.input[p.pos : p.pos+end]
	p.pos += end + 1
	if rest, ok := strings.CutPrefix(body, "&&NHX"); ok {
		for _, kv := range strings.Split(rest, ":") {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				continue
			}
			setNHX(t, k, v)
		}
	}
	return nil
}

// setNHX stores an NHX pair, numbers as float64. The standard S (species)
// and D (duplication) tags are mirrored to "species" and "evoltype".
func setNHX(t *Tree, k, v string) {
	var val any = v
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		val = f
	}
	t.SetAttr(k, val)
	switch k {
	case "S":
		t.SetAttr("species", v)
	case "D":
		switch strings.ToUpper(v) {
		case "Y", "T", "TRUE":
			t.SetAttr("evoltype", "D")
		case "N", "F", "FALSE":
			t.SetAttr("evoltype", "S")
		}
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

// Helpers

func (p *parser) eof() bool { return p.pos >= len(p.input) }

func (p *parser) peek() rune {
	if p.pos >= len(p.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
	return r
}

func (p *parser) consume() rune {
	if p.pos >= len(p.input) {
		return 0
	}
	r, w := utf8.DecodeRuneInString(p.input[p.pos:])
	p.pos += w
	return r
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.consume()
	}
}

// Format writes the topology and names of n in Newick notation.
func Format(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	b.WriteByte(';')
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	if kids := n.Children(); len(kids) > 0 {
		b.WriteByte('(')
		for i, c := range kids {
			if i > 0 {
				b.WriteByte(',')
			}
			writeNode(b, c)
		}
		b.WriteByte(')')
	}
	b.WriteString(quoteLabel(n.Name()))
}

func quoteLabel(s string) string {
	if !strings.ContainsAny(s, "(),:;[]'\" \t\n") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
