package conformance

import (
	"fmt"
	"strings"

	"github.com/SamuelMarks/docstring2class/internal/ir"
	"github.com/SamuelMarks/docstring2class/internal/syntax"
	"github.com/SamuelMarks/docstring2class/internal/views"
)

// checkAmbiguous refuses to patch a definition that owns an independent body
// and a doc block disagreeing with canonical. Re-emitting it would either
// drop its docs or graft canonical docs onto a body written against
// different ones.
func checkAmbiguous(kind, name string, own, canonical *ir.IR) error {
	if !ownsBody(kind, own) {
		return nil
	}
	if field, ok := docConflict(own, canonical); ok {
		return ir.NewAmbiguousReconciliation(name,
			fmt.Sprintf("%s has its own body and a conflicting %s", kind, field))
	}
	return nil
}

// ownsBody reports whether the definition behind own does more than return
// a value. Registration functions own a body only when extra statements were
// preserved; type declarations carry fields, not bodies.
func ownsBody(kind string, own *ir.IR) bool {
	payload, ok := own.Internal.For(kind)
	if !ok {
		return false
	}
	body, _ := payload.([]syntax.Stmt)
	switch kind {
	case views.KindFunction:
		for i, s := range body {
			if _, isReturn := s.(*syntax.Return); isReturn && i == len(body)-1 {
				continue
			}
			if _, isPass := s.(*syntax.Pass); isPass {
				continue
			}
			return true
		}
		return false
	case views.KindCLI:
		return len(body) > 0
	}
	return false
}

// docConflict names the first doc both sides state differently. A doc only
// one side states is a gap, not a conflict.
func docConflict(own, canonical *ir.IR) (string, bool) {
	if differs(own.ShortDoc, canonical.ShortDoc) {
		return "short description", true
	}
	if differs(own.LongDoc, canonical.LongDoc) {
		return "long description", true
	}
	for _, p := range own.Params {
		if c := canonical.Params.Get(p.Name); c != nil && differs(p.Doc, c.Doc) {
			return "doc for " + p.Name, true
		}
	}
	if own.Returns != nil && canonical.Returns != nil && differs(own.Returns.Doc, canonical.Returns.Doc) {
		return "return doc", true
	}
	return "", false
}

func differs(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && b != "" && a != b
}
