package views

import (
	"strings"
	"unicode"

	"github.com/SamuelMarks/docstring2class/internal/docstring"
	"github.com/SamuelMarks/docstring2class/internal/ir"
	"github.com/SamuelMarks/docstring2class/internal/syntax"
	"github.com/SamuelMarks/docstring2class/internal/typeexpr"
)

// Names used by the registration function CLIView emits.
const (
	ParserArg       = "argument_parser"
	DefaultCLIName  = "set_cli_args"
	cliShortDoc     = "Set CLI arguments"
	parserParamDoc  = "argument parser"
	addArgumentAttr = "add_argument"
	descriptionAttr = "description"
)

// CLIView is the argparse registration view:
//
//	def set_cli_args(argument_parser):
//	    argument_parser.description = '...'
//	    argument_parser.add_argument('--name', type=str, help='...', required=True, default='x')
//	    return argument_parser, <returns default>
//
// Help texts are stored verbatim; default announcements are never added to
// or read from them.
type CLIView struct {
	Options
}

// Kind implements View.
func (CLIView) Kind() string { return KindCLI }

// Parse implements View.
func (v CLIView) Parse(node syntax.Node, name string) (*ir.IR, error) {
	stmt, err := Resolve(node, name)
	if err != nil {
		return nil, err
	}
	fn, ok := stmt.(*syntax.FunctionDef)
	if !ok {
		return nil, ir.NewShapeMismatch(name, "function definition", syntax.NodeKind(stmt))
	}

	r := ir.New(fn.Name)
	var returnDoc, returnType string
	if doc, ok := syntax.Docstring(fn.Body); ok {
		seed := docstring.Parse(doc, false)
		if seed.Returns != nil {
			returnDoc = seed.Returns.Doc
			returnType = seed.Returns.Type
		}
	}

	var extra []syntax.Stmt
	body := syntax.WithoutDocstring(fn.Body)
	for i, s := range body {
		if desc, ok := description(s); ok {
			r.ShortDoc = desc
			continue
		}
		if call, ok := registration(s); ok {
			p, err := parseRegistration(call)
			if err != nil {
				return nil, err
			}
			if p != nil {
				r.Params.Set(p)
				continue
			}
		}
		if ret, ok := s.(*syntax.Return); ok && i == len(body)-1 {
			if t, ok := ret.Value.(*syntax.Tuple); ok && len(t.Elts) == 2 {
				if r.Returns == nil {
					r.Returns = &ir.Param{Name: ir.ReturnKey}
				}
				r.Returns.Default = EvalOrFragment(t.Elts[1])
			}
			continue
		}
		extra = append(extra, s)
	}

	doc := stripParserPrefix(returnDoc)
	var typ string
	if typeexpr.IsParserPair(returnType) {
		typ, _ = typeexpr.SecondOf(returnType)
	}
	if doc != "" || typ != "" {
		if r.Returns == nil {
			r.Returns = &ir.Param{Name: ir.ReturnKey}
		}
		r.Returns.Doc = doc
		r.Returns.Type = typ
	}

	if len(fn.Body) > len(r.Params)+3 && len(extra) > 0 {
		r.Internal = ir.NewInternal(KindCLI, extra)
	}
	if v.InferType {
		inferTypes(r)
	}
	return r.Normalize(), nil
}

// stripParserPrefix drops the "argument_parser, " lead of a return doc.
func stripParserPrefix(doc string) string {
	if strings.TrimSpace(doc) == ParserArg {
		return ""
	}
	head, rest, ok := strings.Cut(doc, ",")
	if !ok || strings.TrimSpace(head) != ParserArg {
		return doc
	}
	return strings.TrimSpace(rest)
}

// description matches `<parser>.description = '...'`.
func description(s syntax.Stmt) (string, bool) {
	a, ok := s.(*syntax.Assign)
	if !ok || len(a.Targets) != 1 {
		return "", false
	}
	attr, ok := a.Targets[0].(*syntax.Attribute)
	if !ok || attr.Attr != descriptionAttr {
		return "", false
	}
	c, ok := a.Value.(*syntax.Constant)
	if !ok {
		return "", false
	}
	desc, ok := c.Value.(string)
	return desc, ok
}

// registration matches `<parser>.add_argument(...)`.
func registration(s syntax.Stmt) (*syntax.Call, bool) {
	es, ok := s.(*syntax.ExprStmt)
	if !ok {
		return nil, false
	}
	call, ok := es.Value.(*syntax.Call)
	if !ok {
		return nil, false
	}
	attr, ok := call.Func.(*syntax.Attribute)
	if !ok || attr.Attr != addArgumentAttr {
		return nil, false
	}
	return call, true
}

// parseRegistration reads one add_argument call. A call without a string
// flag name yields a nil param and is kept as a plain statement.
func parseRegistration(call *syntax.Call) (*ir.Param, error) {
	if len(call.Args) == 0 {
		return nil, nil
	}
	flag, ok := call.Args[0].(*syntax.Constant)
	if !ok {
		return nil, nil
	}
	name, ok := flag.Value.(string)
	if !ok {
		return nil, nil
	}

	p := &ir.Param{Name: strings.TrimPrefix(name, "--"), Type: "str"}
	required := false
	var choices syntax.Expr
	for _, kw := range call.Keywords {
		switch kw.Arg {
		case "type":
			p.Type = argparseType(kw.Value)
		case "required":
			if c, ok := kw.Value.(*syntax.Constant); ok {
				required, _ = c.Value.(bool)
			}
		case "default":
			p.Default = EvalOrFragment(kw.Value)
		case "help":
			if c, ok := kw.Value.(*syntax.Constant); ok {
				p.Doc, _ = c.Value.(string)
			}
		case "choices":
			choices = kw.Value
		}
	}

	if !p.HasDefault() && required {
		if zero, ok := ir.ZeroValue(p.Type); ok {
			p.Default = zero
		}
	}
	if choices != nil {
		typ, err := choiceType(p.Name, p.Type, choices)
		if err != nil {
			return nil, err
		}
		p.Type = typ
	}
	if !required && !p.HasDefault() && !ir.IsCatchAll(p.Name) {
		p.Type = typeexpr.Optional(p.Type)
	}
	p.Required = ir.BoolPtr(required)
	return p, nil
}

// argparseType maps a type= argument to a type name. Attribute chains are
// opaque callables (Any); loads parses structured data (dict).
func argparseType(e syntax.Expr) string {
	switch x := e.(type) {
	case *syntax.Attribute:
		return "Any"
	case *syntax.Name:
		if x.ID == "loads" {
			return "dict"
		}
		return x.ID
	case *syntax.RawExpr:
		if src := strings.TrimSpace(x.Source); isIdentifier(src) {
			return argparseType(&syntax.Name{ID: src})
		}
	}
	return "Any"
}

// isIdentifier reports whether s is a plain Python name.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// choiceType builds Literal[...] for string or untyped choices and
// Union[...] otherwise.
func choiceType(name, typ string, choices syntax.Expr) (string, error) {
	var elts []syntax.Expr
	switch x := choices.(type) {
	case *syntax.Tuple:
		elts = x.Elts
	case *syntax.List:
		elts = x.Elts
	case *syntax.Set:
		elts = x.Elts
	default:
		return "", ir.NewUnsupportedLiteralShape(name, syntax.NodeKind(choices))
	}

	rendered := make([]string, len(elts))
	for i, e := range elts {
		v, err := EvalLiteral(e)
		if err != nil {
			return "", ir.NewUnsupportedLiteralShape(name, syntax.NodeKind(e))
		}
		rendered[i] = v.Repr()
	}
	if typ == "str" || typ == "Any" {
		return typeexpr.Literal(rendered), nil
	}
	return typeexpr.Union(rendered), nil
}

// Emit implements View.
func (v CLIView) Emit(r *ir.IR, existing syntax.Stmt) (syntax.Stmt, error) {
	out := &syntax.FunctionDef{
		Name: DefaultCLIName,
		Args: &syntax.Arguments{Args: []*syntax.Arg{{Name: ParserArg}}},
	}
	parser := ParserArg
	if existing != nil {
		prev, ok := existing.(*syntax.FunctionDef)
		if !ok {
			return nil, ir.NewShapeMismatch(r.Name, "function definition", syntax.NodeKind(existing))
		}
		out.Name = prev.Name
		out.Decorators = prev.Decorators
		if prev.Args != nil && len(prev.Args.Args) > 0 {
			out.Args = prev.Args
			parser = prev.Args.Args[0].Name
		}
	}

	body := []syntax.Stmt{&syntax.ExprStmt{Value: syntax.Str(cliDocstring(r, parser))}}
	body = append(body, &syntax.Assign{
		Targets: []syntax.Expr{&syntax.Attribute{Value: &syntax.Name{ID: parser}, Attr: descriptionAttr}},
		Value:   syntax.Str(r.ShortDoc),
	})
	for _, p := range r.Params {
		body = append(body, &syntax.ExprStmt{Value: registrationCall(parser, p)})
	}
	body = append(body, internalBody(r, KindCLI)...)

	ret := &syntax.Return{Value: &syntax.Name{ID: parser}}
	if r.Returns != nil && r.Returns.HasDefault() {
		ret.Value = &syntax.Tuple{Elts: []syntax.Expr{&syntax.Name{ID: parser}, ValueExpr(r.Returns.Default)}}
	}
	out.Body = append(body, ret)
	return out, nil
}

// cliDocstring documents the registration function itself.
func cliDocstring(r *ir.IR, parser string) string {
	doc := &ir.IR{
		ShortDoc: cliShortDoc,
		Params: ir.Params{
			{Name: parser, Doc: parserParamDoc, Type: typeexpr.ParserHandle},
		},
		Returns: &ir.Param{Name: ir.ReturnKey, Doc: parser, Type: typeexpr.ParserHandle},
	}
	if ret := r.Returns; ret != nil {
		if ret.Doc != "" {
			doc.Returns.Doc = parser + ", " + ret.Doc
		}
		if ret.Type != "" {
			doc.Returns.Type = typeexpr.ParserPair(ret.Type)
		}
	}
	return docstring.Emit(doc, docstring.StyleParam, false)
}

// registrationCall renders p as an add_argument call.
func registrationCall(parser string, p *ir.Param) *syntax.Call {
	call := &syntax.Call{
		Func: &syntax.Attribute{Value: &syntax.Name{ID: parser}, Attr: addArgumentAttr},
		Args: []syntax.Expr{syntax.Str("--" + p.Name)},
	}

	typ, optional := p.Type, false
	if inner, ok := typeexpr.UnwrapOptional(typ); ok {
		typ, optional = inner, true
	}

	var choices []ir.Value
	if values, ok := typeexpr.Choices(typ); ok {
		choices = values
		typ = choiceElementType(values)
	}

	if kw := typeKeyword(typ); kw != nil {
		call.Keywords = append(call.Keywords, &syntax.Keyword{Arg: "type", Value: kw})
	}
	if choices != nil {
		call.Keywords = append(call.Keywords, &syntax.Keyword{Arg: "choices", Value: ValueExpr(ir.Tuple(choices))})
	}
	if p.Doc != "" {
		call.Keywords = append(call.Keywords, &syntax.Keyword{Arg: "help", Value: syntax.Str(p.Doc)})
	}
	if !optional && !ir.IsCatchAll(p.Name) && (p.IsRequired() || p.HasDefault()) {
		call.Keywords = append(call.Keywords, &syntax.Keyword{Arg: "required", Value: &syntax.Constant{Value: true}})
	}
	if p.HasDefault() {
		call.Keywords = append(call.Keywords, &syntax.Keyword{Arg: "default", Value: ValueExpr(p.Default)})
	}
	return call
}

// choiceElementType is the shared literal kind of values, or "" when mixed.
func choiceElementType(values []ir.Value) string {
	typ := ir.TypeName(values[0])
	for _, v := range values[1:] {
		if ir.TypeName(v) != typ {
			return ""
		}
	}
	return typ
}

// typeKeyword is the inverse of argparseType.
func typeKeyword(typ string) syntax.Expr {
	switch typ {
	case "":
		return nil
	case "dict":
		return &syntax.Name{ID: "loads"}
	case "Any":
		return &syntax.Attribute{Value: &syntax.Call{Func: &syntax.Name{ID: "globals"}}, Attr: "__getitem__"}
	}
	if isIdentifier(typ) {
		return &syntax.Name{ID: typ}
	}
	return &syntax.RawExpr{Source: typ}
}
