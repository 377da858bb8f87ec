package views

import (
	"github.com/SamuelMarks/docstring2class/internal/docstring"
	"github.com/SamuelMarks/docstring2class/internal/ir"
	"github.com/SamuelMarks/docstring2class/internal/syntax"
	"github.com/SamuelMarks/docstring2class/internal/typeexpr"
)

// FunctionView is the declaration view: a def statement whose signature
// carries the params and whose docstring carries their docs.
//
// The signature is authoritative for param order and defaults; the
// docstring fills docs and types the signature lacks. A **kwargs parameter
// always sorts last. *args is not modeled and survives only through the
// existing node on Emit.
type FunctionView struct {
	Options
}

// Kind implements View.
func (FunctionView) Kind() string { return KindFunction }

// Parse implements View.
func (v FunctionView) Parse(node syntax.Node, name string) (*ir.IR, error) {
	stmt, err := Resolve(node, name)
	if err != nil {
		return nil, err
	}
	fn, ok := stmt.(*syntax.FunctionDef)
	if !ok {
		return nil, ir.NewShapeMismatch(name, "function definition", syntax.NodeKind(stmt))
	}
	return v.parseDef(fn), nil
}

func (v FunctionView) parseDef(fn *syntax.FunctionDef) *ir.IR {
	seed := ir.New(fn.Name)
	if doc, ok := syntax.Docstring(fn.Body); ok {
		seed = docstring.Parse(doc, v.EmitDefaultDoc)
	}

	r := &ir.IR{
		Name:     fn.Name,
		Kind:     receiverKind(fn.Args),
		ShortDoc: seed.ShortDoc,
		LongDoc:  seed.LongDoc,
		Params:   ir.Params{},
		Returns:  seed.Returns,
	}

	for _, arg := range signatureArgs(fn.Args) {
		p := &ir.Param{Name: arg.Name}
		if arg.Annotation != nil {
			p.Type = typeexpr.Normalize(syntax.Unparse(arg.Annotation))
		}
		if arg.Default != nil {
			p.Default = EvalOrFragment(arg.Default)
		}
		r.Params = append(r.Params, p)
	}

	var kwarg string
	if fn.Args != nil && fn.Args.Kwarg != nil {
		k := fn.Args.Kwarg
		kwarg = k.Name
		p := &ir.Param{Name: k.Name, Required: ir.BoolPtr(false)}
		if k.Annotation != nil {
			p.Type = typeexpr.Normalize(syntax.Unparse(k.Annotation))
		}
		r.Params = append(r.Params, p)
	}

	// Doc-only params follow the signature; docs fill what it lacks.
	ir.Merge(r, &ir.IR{Params: seed.Params})
	if kwarg != "" {
		r.Params.MoveToEnd(kwarg)
	}

	if fn.Returns != nil {
		if r.Returns == nil {
			r.Returns = &ir.Param{Name: ir.ReturnKey}
		}
		r.Returns.Type = typeexpr.Normalize(syntax.Unparse(fn.Returns))
	}

	body := syntax.WithoutDocstring(fn.Body)
	if ret, ok := finalReturn(body); ok && ret.Value != nil && !echoesParam(ret.Value, r.Params) {
		if r.Returns == nil {
			r.Returns = &ir.Param{Name: ir.ReturnKey}
		}
		value := ret.Value
		if second, ok := pairSecond(value, r.Returns.Type); ok {
			value = second
			r.Returns.Type, _ = typeexpr.SecondOf(r.Returns.Type)
		}
		r.Returns.Default = EvalOrFragment(value)
	}
	if len(body) > 0 {
		r.Internal = ir.NewInternal(KindFunction, body)
	}

	if v.InferType {
		inferTypes(r)
	}
	return r.Normalize()
}

// receiverKind reads the binding kind off the first parameter.
func receiverKind(args *syntax.Arguments) ir.Kind {
	if args == nil || len(args.Args) == 0 {
		return ir.KindStatic
	}
	switch args.Args[0].Name {
	case "self":
		return ir.KindInstance
	case "cls":
		return ir.KindClassLevel
	}
	return ir.KindStatic
}

// signatureArgs returns the named parameters, receiver excluded.
func signatureArgs(args *syntax.Arguments) []*syntax.Arg {
	if args == nil {
		return nil
	}
	pos := args.Args
	if receiverKind(args) != ir.KindStatic {
		pos = pos[1:]
	}
	out := make([]*syntax.Arg, 0, len(pos)+len(args.KwOnly))
	out = append(out, pos...)
	return append(out, args.KwOnly...)
}

func finalReturn(body []syntax.Stmt) (*syntax.Return, bool) {
	if len(body) == 0 {
		return nil, false
	}
	ret, ok := body[len(body)-1].(*syntax.Return)
	return ret, ok
}

// echoesParam reports a return of one of the params themselves, which is
// what Emit synthesizes for a body-less declaration.
func echoesParam(value syntax.Expr, params ir.Params) bool {
	n, ok := value.(*syntax.Name)
	return ok && params.Has(n.ID)
}

// pairSecond returns the second element of a 2-tuple returned under a
// Tuple[ArgumentParser, T] annotation.
func pairSecond(value syntax.Expr, typ string) (syntax.Expr, bool) {
	t, ok := value.(*syntax.Tuple)
	if !ok || len(t.Elts) != 2 || !typeexpr.IsParserPair(typ) {
		return nil, false
	}
	return t.Elts[1], true
}

// Emit implements View.
func (v FunctionView) Emit(r *ir.IR, existing syntax.Stmt) (syntax.Stmt, error) {
	var prev *syntax.FunctionDef
	if existing != nil {
		fn, ok := existing.(*syntax.FunctionDef)
		if !ok {
			return nil, ir.NewShapeMismatch(r.Name, "function definition", syntax.NodeKind(existing))
		}
		prev = fn
	}

	out := &syntax.FunctionDef{Name: r.Name, Args: &syntax.Arguments{}}
	if out.Name == "" {
		out.Name = "f"
	}
	if prev != nil {
		if prev.Args == nil {
			c := *prev
			c.Args = &syntax.Arguments{}
			prev = &c
		}
		out.Name = prev.Name
		out.Decorators = prev.Decorators
		out.Async = prev.Async
		out.Args.Vararg = prev.Args.Vararg
	}

	if receiver := v.receiver(r, prev); receiver != nil {
		out.Args.Args = append(out.Args.Args, receiver)
	}

	kwarg := catchAllName(r, prev)
	seenDefault := false
	for _, p := range r.Params {
		if p.Name == kwarg {
			out.Args.Kwarg = &syntax.Arg{Name: p.Name, Annotation: keepAnnotation(prev, p)}
			continue
		}
		arg := &syntax.Arg{Name: p.Name, Annotation: keepAnnotation(prev, p)}
		switch {
		case p.HasDefault():
			arg.Default = ValueExpr(p.Default)
		case !p.IsRequired():
			arg.Default = &syntax.Constant{}
		}
		kwOnly := isKwOnly(prev, p.Name) ||
			(out.Args.Vararg != nil && !isPositional(prev, p.Name)) ||
			(seenDefault && arg.Default == nil)
		if kwOnly {
			out.Args.KwOnly = append(out.Args.KwOnly, arg)
			continue
		}
		seenDefault = seenDefault || arg.Default != nil
		out.Args.Args = append(out.Args.Args, arg)
	}

	if prev != nil && prev.Returns != nil && r.Returns != nil && r.Returns.Type != "" {
		out.Returns = typeExpr(r.Returns.Type)
	}

	out.Body = syntax.SetDocstring(v.body(r), docstring.Emit(r, docstring.StyleParam, v.EmitDefaultDoc))
	return out, nil
}

// receiver keeps the existing receiver, or derives one from the kind.
func (v FunctionView) receiver(r *ir.IR, prev *syntax.FunctionDef) *syntax.Arg {
	if prev != nil {
		if receiverKind(prev.Args) != ir.KindStatic {
			return prev.Args.Args[0]
		}
		return nil
	}
	switch r.Kind {
	case ir.KindInstance:
		return &syntax.Arg{Name: "self"}
	case ir.KindClassLevel:
		return &syntax.Arg{Name: "cls"}
	}
	return nil
}

// body returns the preserved statements with the final return updated, or a
// synthesized return when nothing was preserved.
func (v FunctionView) body(r *ir.IR) []syntax.Stmt {
	body := append([]syntax.Stmt(nil), internalBody(r, KindFunction)...)
	if len(body) > 0 {
		ret, ok := finalReturn(body)
		if ok && r.Returns != nil && r.Returns.HasDefault() && !returnsValue(ret, r.Returns.Default) {
			body[len(body)-1] = &syntax.Return{Value: ValueExpr(r.Returns.Default)}
		}
		return body
	}

	switch {
	case r.Returns != nil && r.Returns.HasDefault():
		return []syntax.Stmt{&syntax.Return{Value: ValueExpr(r.Returns.Default)}}
	case len(r.Params) > 0:
		return []syntax.Stmt{&syntax.Return{Value: &syntax.Name{ID: r.Params[0].Name}}}
	}
	return []syntax.Stmt{&syntax.Pass{}}
}

// returnsValue reports whether ret already returns v, so that its original
// spelling can be kept.
func returnsValue(ret *syntax.Return, v ir.Value) bool {
	return ret.Value != nil && EvalOrFragment(ret.Value).Repr() == v.Repr()
}

// catchAllName picks the param emitted as **kwargs.
func catchAllName(r *ir.IR, prev *syntax.FunctionDef) string {
	if prev != nil && prev.Args.Kwarg != nil && r.Params.Has(prev.Args.Kwarg.Name) {
		return prev.Args.Kwarg.Name
	}
	if n := len(r.Params); n > 0 && ir.IsCatchAll(r.Params[n-1].Name) {
		return r.Params[n-1].Name
	}
	return ""
}

// keepAnnotation annotates p only where the existing signature did.
func keepAnnotation(prev *syntax.FunctionDef, p *ir.Param) syntax.Expr {
	if prev == nil || p.Type == "" {
		return nil
	}
	for _, arg := range allArgs(prev.Args) {
		if arg.Name == p.Name && arg.Annotation != nil {
			return typeExpr(p.Type)
		}
	}
	return nil
}

func isKwOnly(prev *syntax.FunctionDef, name string) bool {
	if prev == nil {
		return false
	}
	for _, arg := range prev.Args.KwOnly {
		if arg.Name == name {
			return true
		}
	}
	return false
}

func isPositional(prev *syntax.FunctionDef, name string) bool {
	if prev == nil {
		return false
	}
	for _, arg := range prev.Args.Args {
		if arg.Name == name {
			return true
		}
	}
	return false
}

func allArgs(a *syntax.Arguments) []*syntax.Arg {
	out := append([]*syntax.Arg(nil), a.Args...)
	out = append(out, a.KwOnly...)
	if a.Kwarg != nil {
		out = append(out, a.Kwarg)
	}
	return out
}
