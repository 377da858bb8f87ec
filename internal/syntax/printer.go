package syntax

import (
	"strconv"
	"strings"

	"github.com/SamuelMarks/docstring2class/internal/ir"
)

const indentUnit = "    "

// Unparse renders n as Python source. Statements end with a newline;
// expressions do not.
func Unparse(n Node) string {
	p := &printer{}
	switch x := n.(type) {
	case *Module:
		p.block(x.Body, 0, moduleScope)
	case Stmt:
		p.stmt(x, 0)
	case Expr:
		return expr(x)
	}
	return p.b.String()
}

type scope int

const (
	moduleScope scope = iota
	classScope
	functionScope
)

type printer struct {
	b strings.Builder
}

func (p *printer) line(depth int, s string) {
	p.b.WriteString(strings.Repeat(indentUnit, depth))
	p.b.WriteString(s)
	p.b.WriteByte('\n')
}

func isDef(s Stmt) bool {
	switch s.(type) {
	case *FunctionDef, *ClassDef:
		return true
	}
	return false
}

// blankLines is the number of empty lines between two adjacent statements.
func blankLines(sc scope, prev, next Stmt, prevIsDoc bool) int {
	switch sc {
	case moduleScope:
		if isDef(prev) || isDef(next) {
			return 2
		}
	case classScope:
		if prevIsDoc || isDef(prev) || isDef(next) {
			return 1
		}
	}
	return 0
}

func (p *printer) block(body []Stmt, depth int, sc scope) {
	if len(body) == 0 {
		p.line(depth, "pass")
		return
	}
	for i, s := range body {
		if i > 0 {
			n := blankLines(sc, body[i-1], s, i == 1 && isDocstring(body[0]))
			for range n {
				p.b.WriteByte('\n')
			}
		}
		if i == 0 && sc != moduleScope && isDocstring(s) {
			p.docstring(s.(*ExprStmt).Value.(*Constant).Value.(string), depth)
			continue
		}
		p.stmt(s, depth)
	}
}

func isDocstring(s Stmt) bool {
	es, ok := s.(*ExprStmt)
	if !ok {
		return false
	}
	c, ok := es.Value.(*Constant)
	if !ok {
		return false
	}
	_, ok = c.Value.(string)
	return ok
}

// docstring prints doc cleaned as a triple-quoted block. A single line keeps
// the quotes inline; otherwise they sit on their own lines.
func (p *printer) docstring(doc string, depth int) {
	doc = Cleandoc(doc)
	doc = strings.ReplaceAll(doc, `\`, `\\`)
	doc = strings.ReplaceAll(doc, `"""`, `\"\"\"`)
	if !strings.Contains(doc, "\n") {
		p.line(depth, `"""`+doc+`"""`)
		return
	}
	p.line(depth, `"""`)
	for _, l := range strings.Split(doc, "\n") {
		if strings.TrimSpace(l) == "" {
			p.b.WriteByte('\n')
			continue
		}
		p.line(depth, l)
	}
	p.line(depth, `"""`)
}

func (p *printer) stmt(s Stmt, depth int) {
	switch x := s.(type) {
	case *FunctionDef:
		for _, d := range x.Decorators {
			p.line(depth, "@"+expr(d))
		}
		head := "def "
		if x.Async {
			head = "async def "
		}
		sig := head + x.Name + "(" + arguments(x.Args) + ")"
		if x.Returns != nil {
			sig += " -> " + expr(x.Returns)
		}
		p.line(depth, sig+":")
		p.block(x.Body, depth+1, functionScope)
	case *ClassDef:
		for _, d := range x.Decorators {
			p.line(depth, "@"+expr(d))
		}
		head := "class " + x.Name
		var bases []string
		for _, b := range x.Bases {
			bases = append(bases, expr(b))
		}
		for _, k := range x.Keywords {
			bases = append(bases, keyword(k))
		}
		if len(bases) > 0 {
			head += "(" + strings.Join(bases, ", ") + ")"
		}
		p.line(depth, head+":")
		p.block(x.Body, depth+1, classScope)
	case *Assign:
		var parts []string
		for _, t := range x.Targets {
			parts = append(parts, bare(t))
		}
		parts = append(parts, bare(x.Value))
		p.line(depth, strings.Join(parts, " = "))
	case *AnnAssign:
		out := expr(x.Target) + ": " + expr(x.Annotation)
		if x.Value != nil {
			// Annotated values keep tuple parentheses.
			out += " = " + expr(x.Value)
		}
		p.line(depth, out)
	case *ExprStmt:
		if c, ok := x.Value.(*Constant); ok {
			if s, ok := c.Value.(string); ok && strings.Contains(s, "\n") {
				p.docstring(s, depth)
				return
			}
		}
		p.line(depth, bare(x.Value))
	case *Return:
		if x.Value == nil {
			p.line(depth, "return")
			return
		}
		p.line(depth, "return "+bare(x.Value))
	case *Pass:
		p.line(depth, "pass")
	case *Raw:
		for _, l := range strings.Split(x.Source, "\n") {
			if strings.TrimSpace(l) == "" {
				p.b.WriteByte('\n')
				continue
			}
			p.line(depth, l)
		}
	}
}

func arguments(a *Arguments) string {
	if a == nil {
		return ""
	}
	var parts []string
	for _, arg := range a.Args {
		parts = append(parts, argument(arg))
	}
	switch {
	case a.Vararg != nil:
		parts = append(parts, "*"+argument(a.Vararg))
	case len(a.KwOnly) > 0:
		parts = append(parts, "*")
	}
	for _, arg := range a.KwOnly {
		parts = append(parts, argument(arg))
	}
	if a.Kwarg != nil {
		parts = append(parts, "**"+argument(a.Kwarg))
	}
	return strings.Join(parts, ", ")
}

func argument(a *Arg) string {
	out := a.Name
	if a.Annotation != nil {
		out += ": " + expr(a.Annotation)
		if a.Default != nil {
			out += " = " + expr(a.Default)
		}
		return out
	}
	if a.Default != nil {
		out += "=" + expr(a.Default)
	}
	return out
}

func keyword(k *Keyword) string {
	if k.Arg == "" {
		return "**" + expr(k.Value)
	}
	return k.Arg + "=" + expr(k.Value)
}

// bare prints e, dropping the parentheses of a top-level tuple.
func bare(e Expr) string {
	t, ok := e.(*Tuple)
	if !ok || len(t.Elts) == 0 {
		return expr(e)
	}
	out := joinExprs(t.Elts)
	if len(t.Elts) == 1 {
		out += ","
	}
	return out
}

func joinExprs(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = expr(e)
	}
	return strings.Join(parts, ", ")
}

func expr(e Expr) string {
	switch x := e.(type) {
	case nil:
		return ""
	case *Name:
		return x.ID
	case *Attribute:
		return expr(x.Value) + "." + x.Attr
	case *Constant:
		return constant(x.Value)
	case *Tuple:
		if len(x.Elts) == 1 {
			return "(" + expr(x.Elts[0]) + ",)"
		}
		return "(" + joinExprs(x.Elts) + ")"
	case *List:
		return "[" + joinExprs(x.Elts) + "]"
	case *Set:
		if len(x.Elts) == 0 {
			return "set()"
		}
		return "{" + joinExprs(x.Elts) + "}"
	case *Dict:
		parts := make([]string, len(x.Keys))
		for i := range x.Keys {
			parts[i] = expr(x.Keys[i]) + ": " + expr(x.Values[i])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Subscript:
		return expr(x.Value) + "[" + bare(x.Index) + "]"
	case *Call:
		args := make([]string, 0, len(x.Args)+len(x.Keywords))
		for _, a := range x.Args {
			args = append(args, expr(a))
		}
		for _, k := range x.Keywords {
			args = append(args, keyword(k))
		}
		return expr(x.Func) + "(" + strings.Join(args, ", ") + ")"
	case *UnaryOp:
		if x.Op == "not" {
			return "not " + expr(x.Operand)
		}
		return x.Op + expr(x.Operand)
	case *RawExpr:
		return x.Source
	default:
		return ""
	}
}

func constant(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case string:
		return ir.QuoteString(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return ir.Float(val).Repr()
	case bool:
		return ir.Bool(val).Repr()
	default:
		return ""
	}
}
