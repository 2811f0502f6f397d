package treematcher

import (
	"fmt"
	"strconv"
)

// Parser parses predicate text into an expression AST.
type Parser struct {
	input string
	lex   lexer
	tok   Token // lookahead
}

func NewParser(input string) *Parser {
	p := &Parser{input: input, lex: lexer{input: input}}
	p.tok = p.lex.next()
	return p
}

func (p *Parser) Parse() (Expr, error) {
	if p.tok.Type == TokenEOF {
		return nil, p.errorf("empty predicate")
	}
	x, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenEOF {
		return nil, p.unexpected()
	}
	return x, nil
}

// parseOr handles a or b or c
func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenOr {
		p.consume()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: TokenOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenAnd {
		p.consume()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: TokenAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.tok.Type == TokenNot {
		p.consume()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: TokenNot, X: x}, nil
	}
	return p.parseCmp()
}

// parseCmp handles a single, non-associative comparison.
func (p *Parser) parseCmp() (Expr, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	op := p.tok.Type
	switch op {
	case TokenEq, TokenNe, TokenLt, TokenLe, TokenGt, TokenGe, TokenIn:
		p.consume()
	case TokenNot:
		// only "not in" may follow an operand
		save := p.lex
		if next := p.lex.next(); next.Type != TokenIn {
			p.lex = save
			return nil, p.unexpected()
		}
		p.consume()
		op = TokenNotIn
	default:
		return left, nil
	}
	right, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	return &Binary{Op: op, Left: left, Right: right}, nil
}

func (p *Parser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenPlus || p.tok.Type == TokenMinus {
		op := p.consume().Type
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseProduct() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenStar || p.tok.Type == TokenSlash || p.tok.Type == TokenPercent {
		op := p.consume().Type
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.tok.Type == TokenMinus {
		p.consume()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: TokenMinus, X: x}, nil
	}
	return p.parsePostfix()
}

// parsePostfix handles x.attr, x[i] and x(args) chains.
func (p *Parser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok.Type {
		case TokenDot:
			p.consume()
			if p.tok.Type != TokenIdent {
				return nil, p.errorf("expected attribute name after '.'")
			}
			x = &Attr{X: x, Name: p.consume().Val}
		case TokenLBracket:
			p.consume()
			idx, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(TokenRBracket, "]"); err != nil {
				return nil, err
			}
			x = &Index{X: x, Index: idx}
		case TokenLParen:
			p.consume()
			args, err := p.parseList(TokenRParen, ")")
			if err != nil {
				return nil, err
			}
			x = &Call{Fn: x, Args: args}
		default:
			return x, nil
		}
	}
}

func (p *Parser) parsePrimary() (Expr, error) {
	switch p.tok.Type {
	case TokenNumber:
		t := p.consume()
		f, err := strconv.ParseFloat(t.Val, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: t.Start, Msg: fmt.Sprintf("invalid number %q", t.Val)}
		}
		return &Literal{Val: f}, nil

	case TokenString:
		return &Literal{Val: p.consume().Val}, nil

	case TokenTrue:
		p.consume()
		return &Literal{Val: true}, nil

	case TokenFalse:
		p.consume()
		return &Literal{Val: false}, nil

	case TokenAt:
		p.consume()
		return &Self{}, nil

	case TokenIdent:
		t := p.consume()
		if (t.Val == "any_child" || t.Val == "children") && p.tok.Type == TokenLBracket {
			p.consume()
			body, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(TokenRBracket, "]"); err != nil {
				return nil, err
			}
			return &ChildSet{All: t.Val == "children", Body: body}, nil
		}
		return &Ident{Name: t.Val, Pos: t.Start}, nil

	case TokenLParen:
		p.consume()
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRParen, ")"); err != nil {
			return nil, err
		}
		return x, nil

	case TokenLBracket:
		p.consume()
		elems, err := p.parseList(TokenRBracket, "]")
		if err != nil {
			return nil, err
		}
		return &List{Elems: elems}, nil

	case TokenError:
		return nil, p.errorf("%s", p.tok.Val)

	case TokenEOF:
		return nil, p.errorf("unexpected end of predicate")
	}
	return nil, p.unexpected()
}

// parseList reads comma separated expressions up to and including end.
func (p *Parser) parseList(end TokenType, endText string) ([]Expr, error) {
	var out []Expr
	if p.tok.Type == end {
		p.consume()
		return out, nil
	}
	for {
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		out = append(out, x)
		if p.tok.Type == TokenComma {
			p.consume()
			continue
		}
		if err := p.expect(end, endText); err != nil {
			return nil, err
		}
		return out, nil
	}
}

// Helpers

func (p *Parser) consume() Token {
	t := p.tok
	p.tok = p.lex.next()
	return t
}

func (p *Parser) expect(t TokenType, text string) error {
	if p.tok.Type != t {
		return p.errorf("expected %q", text)
	}
	p.consume()
	return nil
}

func (p *Parser) unexpected() error {
	if p.tok.Type == TokenError {
		return p.errorf("%s", p.tok.Val)
	}
	if p.tok.Type == TokenEOF {
		return p.errorf("unexpected end of predicate")
	}
	return p.errorf("unexpected %q", p.input[p.tok.Start:p.tok.End])
}

func (p *Parser) errorf(format string, args ...any) error {
	return &SyntaxError{Pos: p.tok.Start, Msg: fmt.Sprintf(format, args...)}
}
