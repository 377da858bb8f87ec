package views

import (
	"github.com/SamuelMarks/docstring2class/internal/ir"
	"github.com/SamuelMarks/docstring2class/internal/syntax"
)

// EvalLiteral evaluates e over the closed literal grammar: constants,
// negated numbers, names, attribute chains, and tuples or lists of those.
// Names and attributes evaluate to ir.Expr. Anything else is an
// UnsupportedLiteralShape error.
func EvalLiteral(e syntax.Expr) (ir.Value, error) {
	switch x := e.(type) {
	case *syntax.Constant:
		switch v := x.Value.(type) {
		case nil:
			return ir.None{}, nil
		case string:
			return ir.Str(v), nil
		case int64:
			return ir.Int(v), nil
		case float64:
			return ir.Float(v), nil
		case bool:
			return ir.Bool(v), nil
		}
	case *syntax.Name, *syntax.Attribute:
		if dotted := syntax.DottedName(x); dotted != "" {
			return ir.Expr(dotted), nil
		}
	case *syntax.UnaryOp:
		if x.Op == "-" || x.Op == "+" {
			v, err := EvalLiteral(x.Operand)
			if err != nil {
				return nil, err
			}
			switch n := v.(type) {
			case ir.Int:
				if x.Op == "-" {
					return -n, nil
				}
				return n, nil
			case ir.Float:
				if x.Op == "-" {
					return -n, nil
				}
				return n, nil
			}
		}
	case *syntax.Tuple:
		vals, err := evalAll(x.Elts)
		if err != nil {
			return nil, err
		}
		return ir.Tuple(vals), nil
	case *syntax.List:
		vals, err := evalAll(x.Elts)
		if err != nil {
			return nil, err
		}
		return ir.List(vals), nil
	}
	return nil, ir.NewUnsupportedLiteralShape(syntax.Unparse(e), syntax.NodeKind(e))
}

func evalAll(es []syntax.Expr) ([]ir.Value, error) {
	out := make([]ir.Value, len(es))
	for i, e := range es {
		v, err := EvalLiteral(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// EvalOrFragment evaluates e as a literal, falling back to its source text.
// Tuples and lists keep their shape with fragment elements, so that
// ValueExpr prints them back the way the source wrote them.
func EvalOrFragment(e syntax.Expr) ir.Value {
	if v, err := EvalLiteral(e); err == nil {
		return v
	}
	switch x := e.(type) {
	case *syntax.Tuple:
		return ir.Tuple(fragments(x.Elts))
	case *syntax.List:
		return ir.List(fragments(x.Elts))
	}
	return ir.Expr(syntax.Unparse(e))
}

func fragments(es []syntax.Expr) []ir.Value {
	out := make([]ir.Value, len(es))
	for i, e := range es {
		out[i] = EvalOrFragment(e)
	}
	return out
}

// ValueExpr renders v as an expression node.
func ValueExpr(v ir.Value) syntax.Expr {
	switch x := v.(type) {
	case nil, ir.None:
		return &syntax.Constant{}
	case ir.Str:
		return syntax.Str(string(x))
	case ir.Int:
		return &syntax.Constant{Value: int64(x)}
	case ir.Float:
		return &syntax.Constant{Value: float64(x)}
	case ir.Bool:
		return &syntax.Constant{Value: bool(x)}
	case ir.List:
		return &syntax.List{Elts: valueExprs(x)}
	case ir.Tuple:
		return &syntax.Tuple{Elts: valueExprs(x)}
	case ir.Expr:
		return &syntax.RawExpr{Source: string(x)}
	default:
		return &syntax.RawExpr{Source: v.Repr()}
	}
}

func valueExprs(vs []ir.Value) []syntax.Expr {
	out := make([]syntax.Expr, len(vs))
	for i, v := range vs {
		out[i] = ValueExpr(v)
	}
	return out
}

// typeExpr renders a type string as an annotation.
func typeExpr(typ string) syntax.Expr {
	return &syntax.RawExpr{Source: typ}
}
