package syntax

// Node is any syntax tree node.
type Node interface {
	node()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmt()
}

// Expr is an expression node.
type Expr interface {
	Node
	expr()
}

// Module is a parsed source file. Source is the text it was parsed from;
// it is nil for modules built or rewritten in memory.
type Module struct {
	Body   []Stmt
	Source []byte
}

// Span is the byte range of a definition in its module's Source, decorators
// included. The zero Span marks a definition with no source.
type Span struct {
	Start, End int
}

// IsZero reports whether s carries no range.
func (s Span) IsZero() bool { return s.End == 0 }

func (*Module) node() {}

// FunctionDef is a def statement.
type FunctionDef struct {
	Name       string
	Decorators []Expr
	Args       *Arguments
	Returns    Expr // nil when unannotated
	Body       []Stmt
	Async      bool
	Span       Span
}

// ClassDef is a class statement.
type ClassDef struct {
	Name       string
	Decorators []Expr
	Bases      []Expr
	Keywords   []*Keyword
	Body       []Stmt
	Span       Span
}

// Assign is a plain assignment; chained assignments carry several targets.
type Assign struct {
	Targets []Expr
	Value   Expr
}

// AnnAssign is an annotated assignment. Value is nil for a bare annotation.
type AnnAssign struct {
	Target     Expr
	Annotation Expr
	Value      Expr
}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	Value Expr
}

// Return is a return statement. Value is nil for a bare return.
type Return struct {
	Value Expr
}

// Pass is the pass statement.
type Pass struct{}

// Raw is a statement outside the recognized subset, kept verbatim.
// Source is dedented to column zero.
type Raw struct {
	Source string
}

func (*FunctionDef) node() {}
func (*ClassDef) node()    {}
func (*Assign) node()      {}
func (*AnnAssign) node()   {}
func (*ExprStmt) node()    {}
func (*Return) node()      {}
func (*Pass) node()        {}
func (*Raw) node()         {}

func (*FunctionDef) stmt() {}
func (*ClassDef) stmt()    {}
func (*Assign) stmt()      {}
func (*AnnAssign) stmt()   {}
func (*ExprStmt) stmt()    {}
func (*Return) stmt()      {}
func (*Pass) stmt()        {}
func (*Raw) stmt()         {}

// Arguments is a parameter list.
type Arguments struct {
	Args   []*Arg // positional-or-keyword, receiver included
	Vararg *Arg   // *args
	KwOnly []*Arg // after * or *args
	Kwarg  *Arg   // **kwargs
}

// Arg is one parameter. Annotation and Default are nil when absent.
type Arg struct {
	Name       string
	Annotation Expr
	Default    Expr
}

// Name is an identifier.
type Name struct {
	ID string
}

// Attribute is value.attr.
type Attribute struct {
	Value Expr
	Attr  string
}

// Constant is a literal. Value is string, int64, float64, bool, or nil for
// None.
type Constant struct {
	Value any
}

// Tuple is a tuple display.
type Tuple struct {
	Elts []Expr
}

// List is a list display.
type List struct {
	Elts []Expr
}

// Set is a set display.
type Set struct {
	Elts []Expr
}

// Dict is a dict display.
type Dict struct {
	Keys   []Expr
	Values []Expr
}

// Subscript is value[index]; several indices are carried as a Tuple.
type Subscript struct {
	Value Expr
	Index Expr
}

// Call is a call expression.
type Call struct {
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
}

// Keyword is name=value in a call. An empty Arg is a **value splat.
type Keyword struct {
	Arg   string
	Value Expr
}

// UnaryOp is a prefix operator applied to an operand.
type UnaryOp struct {
	Op      string
	Operand Expr
}

// RawExpr is an expression outside the recognized subset, kept verbatim.
type RawExpr struct {
	Source string
}

func (*Name) node()      {}
func (*Attribute) node() {}
func (*Constant) node()  {}
func (*Tuple) node()     {}
func (*List) node()      {}
func (*Set) node()       {}
func (*Dict) node()      {}
func (*Subscript) node() {}
func (*Call) node()      {}
func (*UnaryOp) node()   {}
func (*RawExpr) node()   {}

func (*Name) expr()      {}
func (*Attribute) expr() {}
func (*Constant) expr()  {}
func (*Tuple) expr()     {}
func (*List) expr()      {}
func (*Set) expr()       {}
func (*Dict) expr()      {}
func (*Subscript) expr() {}
func (*Call) expr()      {}
func (*UnaryOp) expr()   {}
func (*RawExpr) expr()   {}

// NodeKind names the shape of n for error messages.
func NodeKind(n Node) string {
	switch n.(type) {
	case *Module:
		return "module"
	case *FunctionDef:
		return "function definition"
	case *ClassDef:
		return "class definition"
	case *Assign:
		return "assignment"
	case *AnnAssign:
		return "annotated assignment"
	case *ExprStmt:
		return "expression statement"
	case *Return:
		return "return statement"
	case *Pass:
		return "pass statement"
	case *Raw:
		return "statement"
	case *Name:
		return "name"
	case *Attribute:
		return "attribute"
	case *Constant:
		return "constant"
	case *Tuple:
		return "tuple"
	case *List:
		return "list"
	case *Set:
		return "set"
	case *Dict:
		return "dict"
	case *Subscript:
		return "subscript"
	case *Call:
		return "call"
	case *UnaryOp:
		return "unary operation"
	case *RawExpr:
		return "expression"
	case nil:
		return "nothing"
	default:
		return "unknown node"
	}
}

// Str is a shorthand for a string constant.
func Str(s string) *Constant {
	return &Constant{Value: s}
}

// Dotted builds a Name or Attribute chain from a dotted path like "np.empty".
func Dotted(path string) Expr {
	var e Expr
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '.' {
			continue
		}
		part := path[start:i]
		if e == nil {
			e = &Name{ID: part}
		} else {
			e = &Attribute{Value: e, Attr: part}
		}
		start = i + 1
	}
	return e
}

// DottedName returns the dotted path of a Name or Attribute chain, or "".
func DottedName(e Expr) string {
	switch x := e.(type) {
	case *Name:
		return x.ID
	case *Attribute:
		base := DottedName(x.Value)
		if base == "" {
			return ""
		}
		return base + "." + x.Attr
	default:
		return ""
	}
}
