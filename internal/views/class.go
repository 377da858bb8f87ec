package views

import (
	"fmt"

	"github.com/SamuelMarks/docstring2class/internal/docstring"
	"github.com/SamuelMarks/docstring2class/internal/ir"
	"github.com/SamuelMarks/docstring2class/internal/syntax"
	"github.com/SamuelMarks/docstring2class/internal/typeexpr"
)

// ClassView is the type-declaration view: a class whose docstring lists
// :cvar entries and whose body declares one field per param.
//
// A field named return_type carries the returns entry. Other statements
// are kept as the internal body.
type ClassView struct {
	Options

	// MergeInner names a method whose parsed params fill the gaps of the
	// class IR, typically "__init__".
	MergeInner string
}

// Kind implements View.
func (ClassView) Kind() string { return KindClass }

// Parse implements View.
func (v ClassView) Parse(node syntax.Node, name string) (*ir.IR, error) {
	stmt, err := Resolve(node, name)
	if err != nil {
		return nil, err
	}
	cls, ok := stmt.(*syntax.ClassDef)
	if !ok {
		return nil, ir.NewShapeMismatch(name, "class definition", syntax.NodeKind(stmt))
	}

	r := ir.New(cls.Name)
	if doc, ok := syntax.Docstring(cls.Body); ok {
		r = docstring.Parse(doc, v.EmitDefaultDoc)
		r.Name = cls.Name
	}
	r.Kind = ir.KindClassLevel

	var rest []syntax.Stmt
	for _, s := range syntax.WithoutDocstring(cls.Body) {
		if !v.field(r, s) {
			rest = append(rest, s)
		}
	}

	if p := r.Params.Delete(ir.ReturnKey); p != nil {
		p.Name = ir.ReturnKey
		ir.Merge(&ir.IR{Returns: p}, &ir.IR{Returns: r.Returns})
		r.Returns = p
	}

	if v.MergeInner != "" {
		inner, err := v.inner(cls, name)
		if err != nil {
			return nil, err
		}
		ir.Merge(r, inner)
	}

	if len(rest) > 0 {
		r.Internal = ir.NewInternal(KindClass, rest)
	}
	if v.InferType {
		inferTypes(r)
	}
	return r.Normalize(), nil
}

// field folds a field declaration into r, reporting whether s was one.
func (v ClassView) field(r *ir.IR, s syntax.Stmt) bool {
	switch x := s.(type) {
	case *syntax.AnnAssign:
		target, ok := x.Target.(*syntax.Name)
		if !ok {
			return false
		}
		p := fieldParam(r, target.ID)
		p.Type = typeexpr.Normalize(syntax.Unparse(x.Annotation))
		if x.Value != nil {
			p.Default = EvalOrFragment(x.Value)
		}
		return true
	case *syntax.Assign:
		if len(x.Targets) != 1 {
			return false
		}
		target, ok := x.Targets[0].(*syntax.Name)
		if !ok {
			return false
		}
		fieldParam(r, target.ID).Default = EvalOrFragment(x.Value)
		return true
	}
	return false
}

func fieldParam(r *ir.IR, name string) *ir.Param {
	if p := r.Params.Get(name); p != nil {
		return p
	}
	p := &ir.Param{Name: name}
	r.Params.Set(p)
	return p
}

// inner parses the single method named v.MergeInner.
func (v ClassView) inner(cls *syntax.ClassDef, name string) (*ir.IR, error) {
	var found []*syntax.FunctionDef
	for _, s := range cls.Body {
		if fn, ok := s.(*syntax.FunctionDef); ok && fn.Name == v.MergeInner {
			found = append(found, fn)
		}
	}
	path := cls.Name + "." + v.MergeInner
	switch len(found) {
	case 0:
		return nil, ir.NewNameNotFound(path, cls.Name)
	case 1:
		return FunctionView{Options: v.Options}.parseDef(found[0]), nil
	default:
		return nil, ir.NewAmbiguousReconciliation(path, fmt.Sprintf("%d definitions of %s", len(found), v.MergeInner))
	}
}

// Emit implements View.
func (v ClassView) Emit(r *ir.IR, existing syntax.Stmt) (syntax.Stmt, error) {
	out := &syntax.ClassDef{Name: r.Name, Bases: []syntax.Expr{&syntax.Name{ID: "object"}}}
	if out.Name == "" {
		out.Name = "ConfigClass"
	}
	if existing != nil {
		prev, ok := existing.(*syntax.ClassDef)
		if !ok {
			return nil, ir.NewShapeMismatch(r.Name, "class definition", syntax.NodeKind(existing))
		}
		out.Name = prev.Name
		out.Decorators = prev.Decorators
		out.Bases = prev.Bases
		out.Keywords = prev.Keywords
	}

	var body []syntax.Stmt
	for _, p := range r.Params {
		if s := fieldStmt(p); s != nil {
			body = append(body, s)
		}
	}
	if r.Returns != nil {
		if s := fieldStmt(r.Returns); s != nil {
			body = append(body, s)
		}
	}
	body = append(body, internalBody(r, KindClass)...)

	out.Body = syntax.SetDocstring(body, docstring.Emit(r, docstring.StyleCvar, v.EmitDefaultDoc))
	return out, nil
}

// fieldStmt declares p as a class field. A param with neither type nor
// default lives in the docstring alone.
func fieldStmt(p *ir.Param) syntax.Stmt {
	target := &syntax.Name{ID: p.Name}
	var value syntax.Expr
	switch {
	case p.HasDefault():
		value = ValueExpr(p.Default)
	case p.Required != nil && !*p.Required:
		value = &syntax.Constant{}
	}

	if p.Type == "" {
		if value == nil {
			return nil
		}
		return &syntax.Assign{Targets: []syntax.Expr{target}, Value: value}
	}
	return &syntax.AnnAssign{Target: target, Annotation: typeExpr(p.Type), Value: value}
}
