package treematcher

// ExprType identifies the type of predicate AST node.
type ExprType int

const (
	ExprLiteral ExprType = iota
	ExprIdent
	ExprSelf
	ExprAttr
	ExprIndex
	ExprCall
	ExprUnary
	ExprBinary
	ExprList
	ExprChildren // any_child[...] / children[...]
)

// Expr is the base interface for predicate AST nodes.
type Expr interface {
	Type() ExprType
}

// Literal is a number, string or boolean constant.
type Literal struct {
	Val any // float64, string or bool
}

func (e *Literal) Type() ExprType { return ExprLiteral }

// Ident names a helper or a bound variable (child, all_nodes).
type Ident struct {
	Name string
	Pos  int
}

func (e *Ident) Type() ExprType { return ExprIdent }

// Self is @, the candidate target node.
type Self struct{}

func (e *Self) Type() ExprType { return ExprSelf }

// Attr is X.Name.
type Attr struct {
	X    Expr
	Name string
}

func (e *Attr) Type() ExprType { return ExprAttr }

// Index is X[Index].
type Index struct {
	X     Expr
	Index Expr
}

func (e *Index) Type() ExprType { return ExprIndex }

// Call is Fn(Args...).
type Call struct {
	Fn   Expr
	Args []Expr
}

func (e *Call) Type() ExprType { return ExprCall }

// Unary is "not X" or "-X".
type Unary struct {
	Op TokenType // TokenNot or TokenMinus
	X  Expr
}

func (e *Unary) Type() ExprType { return ExprUnary }

// Binary covers logical, comparison, membership and arithmetic operators.
type Binary struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (e *Binary) Type() ExprType { return ExprBinary }

// List is a [a, b, ...] literal.
type List struct {
	Elems []Expr
}

func (e *List) Type() ExprType { return ExprList }

// ChildSet evaluates Body once per child of the candidate with the child
// bound to "child". All selects children[...] (every child must satisfy
// Body); otherwise it is any_child[...].
type ChildSet struct {
	All  bool
	Body Expr
}

func (e *ChildSet) Type() ExprType { return ExprChildren }
