// Package views converts between concrete Python syntax and the IR.
//
// Each view is one variant of the View interface:
//
//	DocstringView  field-list docstring
//	FunctionView   def statement (the declaration view)
//	ClassView      class body of annotated fields (the type-declaration view)
//	CLIView        argparse registration function
//
// Parse resolves a dotted lookup name inside a module (or checks it against
// a definition passed directly) and returns a normalized IR. Emit is the
// inverse: it builds a new statement from an IR and, when given, the
// existing statement whose name, decorators and body it preserves. Neither
// mutates its inputs.
//
// Body statements a view does not model travel in ir.Internal, owned by the
// view that parsed them. Emit only reuses a payload its own view created.
package views

import (
	"fmt"
	"strings"

	"github.com/SamuelMarks/docstring2class/internal/ir"
	"github.com/SamuelMarks/docstring2class/internal/syntax"
)

// View kinds, also used as ir.Internal owners.
const (
	KindDocstring = "docstring"
	KindFunction  = "function"
	KindClass     = "class"
	KindCLI       = "cli"
)

// View converts one concrete syntax form to and from the IR.
type View interface {
	// Kind names the view.
	Kind() string

	// Parse reads the definition called name inside node.
	Parse(node syntax.Node, name string) (*ir.IR, error)

	// Emit renders r. existing may be nil, in which case a fresh statement
	// is synthesized.
	Emit(r *ir.IR, existing syntax.Stmt) (syntax.Stmt, error)
}

// Options tunes parsing and emission.
type Options struct {
	// EmitDefaultDoc moves defaults between docs and structure through
	// "Defaults to X." sentences.
	EmitDefaultDoc bool

	// InferType fills a missing type from the literal kind of the default.
	InferType bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{EmitDefaultDoc: true}
}

// ValidKinds lists the kinds accepted by New.
var ValidKinds = []string{KindDocstring, KindFunction, KindClass, KindCLI}

// New returns the view for kind.
func New(kind string, opts Options) (View, error) {
	switch kind {
	case KindDocstring:
		return DocstringView{Options: opts}, nil
	case KindFunction:
		return FunctionView{Options: opts}, nil
	case KindClass:
		return ClassView{Options: opts}, nil
	case KindCLI:
		return CLIView{Options: opts}, nil
	default:
		return nil, fmt.Errorf("unknown view kind %q (valid: %s)", kind, strings.Join(ValidKinds, ", "))
	}
}

// Resolve finds the statement called name inside node. A module is searched
// with syntax.Lookup; a definition must carry the last component of name
// (an empty name accepts any definition).
func Resolve(node syntax.Node, name string) (syntax.Stmt, error) {
	switch n := node.(type) {
	case *syntax.Module:
		return syntax.Lookup(n, name)
	case *syntax.FunctionDef:
		if err := checkName(n.Name, name); err != nil {
			return nil, err
		}
		return n, nil
	case *syntax.ClassDef:
		if err := checkName(n.Name, name); err != nil {
			return nil, err
		}
		return n, nil
	case syntax.Stmt:
		return n, nil
	default:
		return nil, ir.NewShapeMismatch(name, "statement", syntax.NodeKind(node))
	}
}

func checkName(own, want string) error {
	if want == "" {
		return nil
	}
	if i := strings.LastIndex(want, "."); i >= 0 {
		want = want[i+1:]
	}
	if own != want {
		return ir.NewNameNotFound(want, own)
	}
	return nil
}

// internalBody returns the statements r carries for owner.
func internalBody(r *ir.IR, owner string) []syntax.Stmt {
	payload, ok := r.Internal.For(owner)
	if !ok {
		return nil
	}
	body, _ := payload.([]syntax.Stmt)
	return body
}

// inferTypes fills missing param types from default literals.
func inferTypes(r *ir.IR) {
	for _, p := range r.Params {
		if p.Type == "" && p.HasDefault() {
			p.Type = ir.TypeName(p.Default)
		}
	}
}
