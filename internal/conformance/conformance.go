package conformance

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/SamuelMarks/docstring2class/internal/ir"
	"github.com/SamuelMarks/docstring2class/internal/logging"
	"github.com/SamuelMarks/docstring2class/internal/syntax"
	"github.com/SamuelMarks/docstring2class/internal/views"
)

// Order is the fixed report order of the representations.
var Order = []string{views.KindCLI, views.KindClass, views.KindFunction}

// Status is the outcome of comparing one representation to the truth.
type Status string

const (
	StatusUnchanged Status = "unchanged"
	StatusModified  Status = "modified"
)

// Target is one representation: where it lives, the dotted name of the
// definition inside it, and its parsed source.
type Target struct {
	Location string
	Name     string
	Module   *syntax.Module
}

// Request describes one reconciliation run.
type Request struct {
	CLI      Target
	Class    Target
	Function Target

	// Truth is the view kind whose IR is canonical.
	Truth string

	Options views.Options

	// MergeInner, when set, names the class method whose params fill the
	// gaps of the class IR.
	MergeInner string
}

// Target returns the target for a view kind.
func (r *Request) Target(kind string) (Target, error) {
	switch kind {
	case views.KindCLI:
		return r.CLI, nil
	case views.KindClass:
		return r.Class, nil
	case views.KindFunction:
		return r.Function, nil
	}
	return Target{}, fmt.Errorf("unknown representation kind %q (want one of %v)", kind, Order)
}

// Validate checks the truth kind and that no two representations share a
// location. Each patch is computed from its own unpatched source, so two
// patches of one file could not both be written.
func (r *Request) Validate() error {
	if _, err := r.Target(r.Truth); err != nil {
		return fmt.Errorf("truth: %w", err)
	}
	seen := map[string]string{}
	for _, kind := range Order {
		t, _ := r.Target(kind)
		loc := filepath.Clean(t.Location)
		if prev, ok := seen[loc]; ok {
			return fmt.Errorf("%s and %s share location %s", prev, kind, t.Location)
		}
		seen[loc] = kind
	}
	return nil
}

func (r *Request) view(kind string) (views.View, error) {
	if kind == views.KindClass {
		return views.ClassView{Options: r.Options, MergeInner: r.MergeInner}, nil
	}
	return views.New(kind, r.Options)
}

// Outcome is the result for one representation.
type Outcome struct {
	Kind     string `json:"kind"`
	Location string `json:"location"`
	Name     string `json:"name"`
	Status   Status `json:"status"`
	Diff     string `json:"diff,omitempty"`

	// Module is the patched tree and Source the patched text, both nil when
	// unchanged. Source differs from the original only inside the replaced
	// definition.
	Module *syntax.Module `json:"-"`
	Source []byte         `json:"-"`
}

// Result is the outcome of a reconciliation run.
type Result struct {
	Truth       string    `json:"truth"`
	Fingerprint string    `json:"fingerprint"`
	Canonical   *ir.IR    `json:"canonical"`
	Outcomes    []Outcome `json:"outcomes"`
}

// Statuses returns the statuses in report order.
func (r *Result) Statuses() []Status {
	out := make([]Status, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Status
	}
	return out
}

// Modified returns the outcomes that need to be written.
func (r *Result) Modified() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusModified {
			out = append(out, o)
		}
	}
	return out
}

// GroundTruth reconciles the representations of req against its truth.
//
// The three parses run concurrently, followed by the three compare and emit
// pipelines, which share only the read-only canonical IR. The first error
// aborts the run and no partial result is returned.
func GroundTruth(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx)

	own := make([]*ir.IR, len(Order))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range Order {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := parse(&req, kind)
			if err != nil {
				return err
			}
			own[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	canonical := own[indexOf(req.Truth)]
	fp, err := ir.Fingerprint(canonical)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("truth", req.Truth).Str("fingerprint", fp).Msg("canonical IR selected")

	res := &Result{
		Truth:       req.Truth,
		Fingerprint: fp,
		Canonical:   canonical,
		Outcomes:    make([]Outcome, len(Order)),
	}
	g, gctx = errgroup.WithContext(ctx)
	for i, kind := range Order {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o, err := reconcile(&req, kind, own[i], canonical)
			if err != nil {
				return err
			}
			logger.Debug().
				Str("kind", kind).
				Str("location", o.Location).
				Str("status", string(o.Status)).
				Msg("representation compared")
			res.Outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func indexOf(kind string) int {
	for i, k := range Order {
		if k == kind {
			return i
		}
	}
	return -1
}

// parse reads the IR of one representation under its own lookup name.
func parse(req *Request, kind string) (*ir.IR, error) {
	t, _ := req.Target(kind)
	if t.Module == nil {
		return nil, fmt.Errorf("%s: no source loaded for %s", kind, t.Location)
	}
	v, err := req.view(kind)
	if err != nil {
		return nil, err
	}
	r, err := v.Parse(t.Module, t.Name)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", kind, t.Location, err)
	}
	return r, nil
}

// reconcile compares one representation with canonical and patches it when
// they differ.
func reconcile(req *Request, kind string, own, canonical *ir.IR) (Outcome, error) {
	t, _ := req.Target(kind)
	o := Outcome{Kind: kind, Location: t.Location, Name: t.Name, Status: StatusUnchanged}
	if kind == req.Truth || ir.Equal(own, canonical) {
		return o, nil
	}

	if err := checkAmbiguous(kind, t.Name, own, canonical); err != nil {
		return Outcome{}, fmt.Errorf("%s %s: %w", kind, t.Location, err)
	}

	existing, err := syntax.Lookup(t.Module, t.Name)
	if err != nil {
		return Outcome{}, err
	}
	v, err := req.view(kind)
	if err != nil {
		return Outcome{}, err
	}

	patch := canonical.Clone()
	patch.Internal = own.Internal
	stmt, err := v.Emit(patch, existing)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s %s: %w", kind, t.Location, err)
	}
	mod, err := syntax.Replace(t.Module, t.Name, stmt)
	if err != nil {
		return Outcome{}, err
	}
	src, err := syntax.Patch(t.Module, t.Name, stmt)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s %s: %w", kind, t.Location, err)
	}

	o.Status = StatusModified
	o.Diff = ir.Diff(own, canonical)
	o.Module = mod
	o.Source = src
	return o, nil
}
