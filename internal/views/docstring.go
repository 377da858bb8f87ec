package views

import (
	"github.com/SamuelMarks/docstring2class/internal/docstring"
	"github.com/SamuelMarks/docstring2class/internal/ir"
	"github.com/SamuelMarks/docstring2class/internal/syntax"
)

// DocstringView reads and writes a bare docstring.
//
// Parse accepts a string expression, or a definition whose docstring is
// read. Required flags stay undetermined.
type DocstringView struct {
	Options
}

// Kind implements View.
func (DocstringView) Kind() string { return KindDocstring }

// Parse implements View.
func (v DocstringView) Parse(node syntax.Node, name string) (*ir.IR, error) {
	var doc string
	switch n := node.(type) {
	case *syntax.Constant:
		s, ok := n.Value.(string)
		if !ok {
			return nil, ir.NewShapeMismatch(name, "string", syntax.NodeKind(n))
		}
		doc = syntax.Cleandoc(s)
	case *syntax.ExprStmt:
		return v.Parse(n.Value, name)
	default:
		stmt, err := Resolve(node, name)
		if err != nil {
			return nil, err
		}
		d, ok := syntax.Docstring(bodyOf(stmt))
		if !ok {
			return nil, ir.NewShapeMismatch(name, "docstring", syntax.NodeKind(stmt))
		}
		doc = d
	}

	r := docstring.Parse(doc, v.EmitDefaultDoc)
	r.Name = name
	if v.InferType {
		inferTypes(r)
	}
	return r, nil
}

// Emit implements View. Given a definition, it returns a copy with the
// docstring replaced; otherwise a docstring expression statement.
func (v DocstringView) Emit(r *ir.IR, existing syntax.Stmt) (syntax.Stmt, error) {
	doc := docstring.Emit(r, docstring.StyleParam, v.EmitDefaultDoc)
	switch def := existing.(type) {
	case *syntax.FunctionDef:
		out := *def
		out.Body = syntax.SetDocstring(def.Body, doc)
		return &out, nil
	case *syntax.ClassDef:
		out := *def
		out.Body = syntax.SetDocstring(def.Body, doc)
		return &out, nil
	}
	return &syntax.ExprStmt{Value: syntax.Str(doc)}, nil
}

func bodyOf(s syntax.Stmt) []syntax.Stmt {
	switch def := s.(type) {
	case *syntax.FunctionDef:
		return def.Body
	case *syntax.ClassDef:
		return def.Body
	}
	return nil
}
