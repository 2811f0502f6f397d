package treematcher

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type TokenType int

const (
	TokenError TokenType = iota
	TokenEOF
	TokenIdent    // name, n_leaves, any_child
	TokenNumber   // 0.4, 12
	TokenString   // "c" or 'c'
	TokenAt       // @
	TokenDot      // .
	TokenComma    // ,
	TokenLParen   // (
	TokenRParen   // )
	TokenLBracket // [
	TokenRBracket // ]
	TokenEq       // ==
	TokenNe       // !=
	TokenLt       // <
	TokenLe       // <=
	TokenGt       // >
	TokenGe       // >=
	TokenPlus     // +
	TokenMinus    // -
	TokenStar     // *
	TokenSlash    // /
	TokenPercent  // %
	TokenAnd      // and, &&
	TokenOr       // or, ||
	TokenNot      // not, !
	TokenIn       // in
	TokenNotIn    // not in (produced by the parser)
	TokenTrue     // true, True
	TokenFalse    // false, False
)

var tokenNames = map[TokenType]string{
	TokenEq: "==", TokenNe: "!=", TokenLt: "<", TokenLe: "<=", TokenGt: ">", TokenGe: ">=",
	TokenPlus: "+", TokenMinus: "-", TokenStar: "*", TokenSlash: "/", TokenPercent: "%",
	TokenAnd: "and", TokenOr: "or", TokenNot: "not", TokenIn: "in", TokenNotIn: "not in",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

type Token struct {
	Type  TokenType
	Val   string
	Start int
	End   int
}

var keywords = map[string]TokenType{
	"and":   TokenAnd,
	"or":    TokenOr,
	"not":   TokenNot,
	"in":    TokenIn,
	"true":  TokenTrue,
	"True":  TokenTrue,
	"false": TokenFalse,
	"False": TokenFalse,
}

// lexer splits predicate text into tokens. It is driven by the parser one
// token at a time.
type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() Token {
	for l.pos < len(l.input) && unicode.IsSpace(l.peek()) {
		l.consume()
	}
	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Start: start, End: start}
	}
	tok := func(t TokenType) Token {
		return Token{Type: t, Val: l.input[start:l.pos], Start: start, End: l.pos}
	}

	r := l.consume()
	switch {
	case r == '_' || unicode.IsLetter(r):
		for l.pos < len(l.input) && isIdentRune(l.peek()) {
			l.consume()
		}
		if kw, ok := keywords[l.input[start:l.pos]]; ok {
			return tok(kw)
		}
		return tok(TokenIdent)
	case r >= '0' && r <= '9' || r == '.' && isDigit(l.peek()):
		l.scanNumber()
		return tok(TokenNumber)
	case r == '"' || r == '\'':
		return l.scanString(start, r)
	}

	switch r {
	case '@':
		return tok(TokenAt)
	case '.':
		return tok(TokenDot)
	case ',':
		return tok(TokenComma)
	case '(':
		return tok(TokenLParen)
	case ')':
		return tok(TokenRParen)
	case '[':
		return tok(TokenLBracket)
	case ']':
		return tok(TokenRBracket)
	case '+':
		return tok(TokenPlus)
	case '-':
		return tok(TokenMinus)
	case '*':
		return tok(TokenStar)
	case '/':
		return tok(TokenSlash)
	case '%':
		return tok(TokenPercent)
	case '=':
		if l.peek() == '=' {
			l.consume()
			return tok(TokenEq)
		}
	case '!':
		if l.peek() == '=' {
			l.consume()
			return tok(TokenNe)
		}
		return tok(TokenNot)
	case '<':
		if l.peek() == '=' {
			l.consume()
			return tok(TokenLe)
		}
		return tok(TokenLt)
	case '>':
		if l.peek() == '=' {
			l.consume()
			return tok(TokenGe)
		}
		return tok(TokenGt)
	case '&':
		if l.peek() == '&' {
			l.consume()
			return tok(TokenAnd)
		}
	case '|':
		if l.peek() == '|' {
			l.consume()
			return tok(TokenOr)
		}
	}
	return Token{Type: TokenError, Val: fmt.Sprintf("unexpected character %q", r), Start: start, End: l.pos}
}

func (l *lexer) scanNumber() {
	for l.pos < len(l.input) && (isDigit(l.peek()) || l.peek() == '.') {
		l.consume()
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		save := l.pos
		l.consume()
		if l.peek() == '+' || l.peek() == '-' {
			l.consume()
		}
		if !isDigit(l.peek()) {
			l.pos = save
			return
		}
		for isDigit(l.peek()) {
			l.consume()
		}
	}
}

// scanString reads a quoted literal. Backslash escapes the next rune.
func (l *lexer) scanString(start int, quote rune) Token {
	var b strings.Builder
	for {
		if l.pos >= len(l.input) {
			return Token{Type: TokenError, Val: "unterminated string", Start: start, End: l.pos}
		}
		r := l.consume()
		switch r {
		case quote:
			return Token{Type: TokenString, Val: b.String(), Start: start, End: l.pos}
		case '\\':
			if l.pos >= len(l.input) {
				return Token{Type: TokenError, Val: "trailing backslash", Start: start, End: l.pos}
			}
			switch e := l.consume(); e {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			default:
				b.WriteRune(e)
			}
		default:
			b.WriteRune(r)
		}
	}
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

func (l *lexer) consume() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += w
	return r
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
