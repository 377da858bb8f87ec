package syntax

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parse parses Python source into a Module.
//
// Statements and expressions outside the recognized subset are kept as Raw
// and RawExpr so that Unparse reproduces them. Comments between statements
// are not part of the tree; they survive in Source, which Patch edits.
func Parse(ctx context.Context, src []byte) (*Module, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("parse: syntax error near line %d", firstErrorLine(root))
	}

	c := &converter{src: src}
	return &Module{Body: c.stmts(root), Source: src}, nil
}

// ParseString is Parse for a string with a background context.
func ParseString(src string) (*Module, error) {
	return Parse(context.Background(), []byte(src))
}

// ParseExpr parses a single expression.
func ParseExpr(src string) (Expr, error) {
	mod, err := ParseString(strings.TrimSpace(src) + "\n")
	if err != nil {
		return nil, err
	}
	if len(mod.Body) != 1 {
		return nil, fmt.Errorf("parse: expected one expression, got %d statements", len(mod.Body))
	}
	es, ok := mod.Body[0].(*ExprStmt)
	if !ok {
		return nil, fmt.Errorf("parse: expected expression, got %s", NodeKind(mod.Body[0]))
	}
	return es.Value, nil
}

func firstErrorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return int(n.StartPoint().Row) + 1
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.HasError() || child.IsMissing() {
			return firstErrorLine(child)
		}
	}
	return int(n.StartPoint().Row) + 1
}

type converter struct {
	src []byte
}

func (c *converter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

// namedChildren returns the named children of n, comments excluded.
func namedChildren(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func (c *converter) stmts(block *sitter.Node) []Stmt {
	var out []Stmt
	for _, child := range namedChildren(block) {
		out = append(out, c.stmt(child))
	}
	return out
}

func (c *converter) stmt(n *sitter.Node) Stmt {
	switch n.Type() {
	case "function_definition":
		return c.functionDef(n, n, nil)
	case "class_definition":
		return c.classDef(n, n, nil)
	case "decorated_definition":
		return c.decorated(n)
	case "expression_statement":
		return c.expressionStatement(n)
	case "return_statement":
		ret := &Return{}
		if children := namedChildren(n); len(children) > 0 {
			ret.Value = c.expr(children[0])
		}
		return ret
	case "pass_statement":
		return &Pass{}
	default:
		return c.raw(n)
	}
}

// raw keeps n verbatim, dedented to column zero.
func (c *converter) raw(n *sitter.Node) *Raw {
	col := int(n.StartPoint().Column)
	lines := strings.Split(c.text(n), "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = trimIndent(lines[i], col)
	}
	return &Raw{Source: strings.Join(lines, "\n")}
}

// trimIndent removes up to n leading spaces or tabs.
func trimIndent(line string, n int) string {
	i := 0
	for i < n && i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[i:]
}

func (c *converter) decorated(n *sitter.Node) Stmt {
	var decorators []Expr
	for _, child := range namedChildren(n) {
		if child.Type() != "decorator" {
			continue
		}
		if inner := namedChildren(child); len(inner) > 0 {
			decorators = append(decorators, c.expr(inner[0]))
		}
	}

	def := n.ChildByFieldName("definition")
	if def == nil {
		return c.raw(n)
	}
	switch def.Type() {
	case "function_definition":
		return c.functionDef(def, n, decorators)
	case "class_definition":
		return c.classDef(def, n, decorators)
	default:
		return c.raw(n)
	}
}

// functionDef converts n; outer is n or its decorated_definition and
// bounds the span.
func (c *converter) functionDef(n, outer *sitter.Node, decorators []Expr) Stmt {
	fn := &FunctionDef{
		Name:       c.text(n.ChildByFieldName("name")),
		Decorators: decorators,
		Args:       &Arguments{},
		Span:       span(outer),
	}
	if first := n.Child(0); first != nil && first.Type() == "async" {
		fn.Async = true
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		args, ok := c.arguments(params)
		if !ok {
			return c.raw(n)
		}
		fn.Args = args
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		fn.Returns = c.expr(ret)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		fn.Body = c.stmts(body)
	}
	return fn
}

// arguments converts a parameter list. ok is false for shapes outside the
// subset (positional-only markers, tuple parameters).
func (c *converter) arguments(n *sitter.Node) (*Arguments, bool) {
	args := &Arguments{}
	kwOnly := false

	add := func(a *Arg) {
		if kwOnly {
			args.KwOnly = append(args.KwOnly, a)
		} else {
			args.Args = append(args.Args, a)
		}
	}

	for _, p := range namedChildren(n) {
		switch p.Type() {
		case "identifier":
			add(&Arg{Name: c.text(p)})
		case "default_parameter":
			add(&Arg{
				Name:    c.text(p.ChildByFieldName("name")),
				Default: c.expr(p.ChildByFieldName("value")),
			})
		case "typed_default_parameter":
			add(&Arg{
				Name:       c.text(p.ChildByFieldName("name")),
				Annotation: c.expr(p.ChildByFieldName("type")),
				Default:    c.expr(p.ChildByFieldName("value")),
			})
		case "typed_parameter":
			inner := namedChildren(p)
			if len(inner) == 0 {
				return nil, false
			}
			ann := c.expr(p.ChildByFieldName("type"))
			switch inner[0].Type() {
			case "identifier":
				add(&Arg{Name: c.text(inner[0]), Annotation: ann})
			case "list_splat_pattern":
				args.Vararg = &Arg{Name: splatName(c, inner[0]), Annotation: ann}
				kwOnly = true
			case "dictionary_splat_pattern":
				args.Kwarg = &Arg{Name: splatName(c, inner[0]), Annotation: ann}
			default:
				return nil, false
			}
		case "list_splat_pattern":
			args.Vararg = &Arg{Name: splatName(c, p)}
			kwOnly = true
		case "dictionary_splat_pattern":
			args.Kwarg = &Arg{Name: splatName(c, p)}
		case "keyword_separator":
			kwOnly = true
		default:
			return nil, false
		}
	}
	return args, true
}

func span(n *sitter.Node) Span {
	return Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func splatName(c *converter, n *sitter.Node) string {
	return strings.TrimLeft(c.text(n), "*")
}

func (c *converter) classDef(n, outer *sitter.Node, decorators []Expr) Stmt {
	cls := &ClassDef{
		Name:       c.text(n.ChildByFieldName("name")),
		Decorators: decorators,
		Span:       span(outer),
	}
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for _, arg := range namedChildren(supers) {
			if arg.Type() == "keyword_argument" {
				cls.Keywords = append(cls.Keywords, c.keyword(arg))
				continue
			}
			cls.Bases = append(cls.Bases, c.expr(arg))
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		cls.Body = c.stmts(body)
	}
	return cls
}

func (c *converter) expressionStatement(n *sitter.Node) Stmt {
	children := namedChildren(n)
	if len(children) == 0 {
		return c.raw(n)
	}
	if len(children) > 1 {
		elts := make([]Expr, len(children))
		for i, child := range children {
			elts[i] = c.expr(child)
		}
		return &ExprStmt{Value: &Tuple{Elts: elts}}
	}

	child := children[0]
	if child.Type() != "assignment" {
		if isStatementLevel(child.Type()) {
			return c.raw(n)
		}
		return &ExprStmt{Value: c.expr(child)}
	}

	left := child.ChildByFieldName("left")
	typ := child.ChildByFieldName("type")
	right := child.ChildByFieldName("right")

	if typ != nil {
		ann := &AnnAssign{Target: c.expr(left), Annotation: c.expr(typ)}
		if right != nil {
			ann.Value = c.expr(right)
		}
		return ann
	}
	if right == nil {
		return c.raw(n)
	}

	assign := &Assign{Targets: []Expr{c.expr(left)}}
	for right.Type() == "assignment" && right.ChildByFieldName("type") == nil {
		next := right.ChildByFieldName("right")
		if next == nil {
			return c.raw(n)
		}
		assign.Targets = append(assign.Targets, c.expr(right.ChildByFieldName("left")))
		right = next
	}
	assign.Value = c.expr(right)
	return assign
}

// isStatementLevel reports node types that read as expressions in the
// grammar but are kept verbatim.
func isStatementLevel(typ string) bool {
	switch typ {
	case "augmented_assignment", "yield":
		return true
	}
	return false
}

func (c *converter) keyword(n *sitter.Node) *Keyword {
	return &Keyword{
		Arg:   c.text(n.ChildByFieldName("name")),
		Value: c.expr(n.ChildByFieldName("value")),
	}
}

func (c *converter) exprs(n *sitter.Node) []Expr {
	children := namedChildren(n)
	out := make([]Expr, len(children))
	for i, child := range children {
		out[i] = c.expr(child)
	}
	return out
}

func (c *converter) expr(n *sitter.Node) Expr {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier":
		return &Name{ID: c.text(n)}
	case "attribute":
		obj := c.expr(n.ChildByFieldName("object"))
		return &Attribute{Value: obj, Attr: c.text(n.ChildByFieldName("attribute"))}
	case "integer":
		if v, err := strconv.ParseInt(c.text(n), 0, 64); err == nil {
			return &Constant{Value: v}
		}
	case "float":
		if v, err := strconv.ParseFloat(strings.ReplaceAll(c.text(n), "_", ""), 64); err == nil {
			return &Constant{Value: v}
		}
	case "true":
		return &Constant{Value: true}
	case "false":
		return &Constant{Value: false}
	case "none":
		return &Constant{Value: nil}
	case "string":
		if s, ok := decodeString(c.text(n)); ok {
			return &Constant{Value: s}
		}
	case "concatenated_string":
		var b strings.Builder
		for _, part := range namedChildren(n) {
			s, ok := decodeString(c.text(part))
			if !ok {
				return &RawExpr{Source: c.text(n)}
			}
			b.WriteString(s)
		}
		return &Constant{Value: b.String()}
	case "tuple", "expression_list":
		return &Tuple{Elts: c.exprs(n)}
	case "list":
		return &List{Elts: c.exprs(n)}
	case "set":
		return &Set{Elts: c.exprs(n)}
	case "dictionary":
		return c.dict(n)
	case "parenthesized_expression", "type":
		if children := namedChildren(n); len(children) == 1 {
			return c.expr(children[0])
		}
	case "subscript":
		return c.subscript(n)
	case "call":
		return c.call(n)
	case "unary_operator":
		return c.unary(n)
	}
	return &RawExpr{Source: c.text(n)}
}

func (c *converter) dict(n *sitter.Node) Expr {
	d := &Dict{}
	for _, pair := range namedChildren(n) {
		if pair.Type() != "pair" {
			return &RawExpr{Source: c.text(n)}
		}
		d.Keys = append(d.Keys, c.expr(pair.ChildByFieldName("key")))
		d.Values = append(d.Values, c.expr(pair.ChildByFieldName("value")))
	}
	return d
}

func (c *converter) subscript(n *sitter.Node) Expr {
	var indices []Expr
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == "subscript" {
			indices = append(indices, c.expr(n.Child(i)))
		}
	}
	sub := &Subscript{Value: c.expr(n.ChildByFieldName("value"))}
	switch len(indices) {
	case 0:
		return &RawExpr{Source: c.text(n)}
	case 1:
		sub.Index = indices[0]
	default:
		sub.Index = &Tuple{Elts: indices}
	}
	return sub
}

func (c *converter) call(n *sitter.Node) Expr {
	argList := n.ChildByFieldName("arguments")
	if argList == nil || argList.Type() != "argument_list" {
		return &RawExpr{Source: c.text(n)}
	}
	call := &Call{Func: c.expr(n.ChildByFieldName("function"))}
	for _, arg := range namedChildren(argList) {
		switch arg.Type() {
		case "keyword_argument":
			call.Keywords = append(call.Keywords, c.keyword(arg))
		case "dictionary_splat":
			inner := namedChildren(arg)
			if len(inner) != 1 {
				return &RawExpr{Source: c.text(n)}
			}
			call.Keywords = append(call.Keywords, &Keyword{Value: c.expr(inner[0])})
		default:
			call.Args = append(call.Args, c.expr(arg))
		}
	}
	return call
}

func (c *converter) unary(n *sitter.Node) Expr {
	op := n.ChildByFieldName("operator")
	operand := c.expr(n.ChildByFieldName("argument"))
	if op == nil || operand == nil {
		return &RawExpr{Source: c.text(n)}
	}
	sign := c.text(op)
	if k, ok := operand.(*Constant); ok && sign == "-" {
		switch v := k.Value.(type) {
		case int64:
			return &Constant{Value: -v}
		case float64:
			return &Constant{Value: -v}
		}
	}
	return &UnaryOp{Op: sign, Operand: operand}
}

// decodeString decodes a single string literal token. Byte strings and
// f-strings are not decoded (ok is false).
func decodeString(tok string) (string, bool) {
	i := 0
	raw := false
	for i < len(tok) && tok[i] != '\'' && tok[i] != '"' {
		switch tok[i] {
		case 'r', 'R':
			raw = true
		case 'u', 'U':
		default:
			return "", false
		}
		i++
	}
	body := tok[i:]
	var quote string
	switch {
	case strings.HasPrefix(body, `"""`), strings.HasPrefix(body, `'''`):
		quote = body[:3]
	case len(body) >= 2:
		quote = body[:1]
	default:
		return "", false
	}
	if len(body) < 2*len(quote) || !strings.HasSuffix(body, quote) {
		return "", false
	}
	body = body[len(quote) : len(body)-len(quote)]
	if raw {
		return body, true
	}
	return unescape(body), true
}

// unescape resolves Python backslash escapes.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' || i+1 == len(s) {
			b.WriteByte(ch)
			continue
		}
		i++
		switch s[i] {
		case '\n':
			// line continuation
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '\\', '\'', '"':
			b.WriteByte(s[i])
		case 'x':
			if i+2 < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
					b.WriteRune(rune(v))
					i += 2
					continue
				}
			}
			b.WriteString(`\x`)
		case 'u':
			if i+4 < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					b.WriteRune(rune(v))
					i += 4
					continue
				}
			}
			b.WriteString(`\u`)
		default:
			// Unknown escapes are kept verbatim.
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
