package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SamuelMarks/docstring2class/internal/conformance"
	"github.com/SamuelMarks/docstring2class/internal/ir"
	"github.com/SamuelMarks/docstring2class/internal/syntax"
	"github.com/SamuelMarks/docstring2class/internal/views"
)

// EmitOptions holds flags for the emit command.
type EmitOptions struct {
	*RootOptions
	From   string
	To     string
	Name   string
	Into   string
	Target string
	Write  bool
}

// EmitResult is the JSON payload of the emit command.
type EmitResult struct {
	Source  string `json:"source"`
	Into    string `json:"into,omitempty"`
	Created bool   `json:"created"`
	Written bool   `json:"written"`
}

// NewEmitCommand creates the emit command.
func NewEmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "emit FILE",
		Short: "Convert one representation into another",
		Long: `Parse the definition called --name in FILE through the --from view and
render it through the --to view.

Without --into the new definition is printed. With --into, the definition
called --target (default --name) in that file is replaced, keeping its
name, decorators and body, or appended when absent; the whole file is
printed, or written back with --write.

Examples:
  doctrans emit --from class --to cli --name ConfigClass classes.py
  doctrans emit --from cli --to function --name set_cli_args argparse.py \
      --into methods.py --target C.method_name --write`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(opts, cmd, args[0])
		},
	}

	kinds := strings.Join(views.ValidKinds, "|")
	cmd.Flags().StringVar(&opts.From, "from", "", fmt.Sprintf("source view kind (%s)", kinds))
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&opts.To, "to", "", fmt.Sprintf("target view kind (%s)", kinds))
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "dotted lookup name of the source definition")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.Into, "into", "", "file whose definition is replaced")
	cmd.Flags().StringVar(&opts.Target, "target", "", "dotted lookup name inside --into (default --name)")
	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "write --into in place instead of printing it")

	return cmd
}

func runEmit(opts *EmitOptions, cmd *cobra.Command, path string) error {
	f := opts.formatter(cmd)
	if opts.Write && opts.Into == "" {
		return f.Fail("invalid flags", NewExitError(ExitCommandError, "--write requires --into"))
	}
	ctx, err := opts.context(cmd)
	if err != nil {
		return err
	}
	viewOpts, err := opts.ViewOptions()
	if err != nil {
		return err
	}
	from, err := newView(opts.From, viewOpts, "")
	if err != nil {
		return f.Fail("invalid --from", err)
	}
	to, err := newView(opts.To, viewOpts, "")
	if err != nil {
		return f.Fail("invalid --to", err)
	}

	src, err := conformance.LoadTarget(ctx, path, opts.Name)
	if err != nil {
		return f.Fail("failed to load source", err)
	}
	r, err := from.Parse(src.Module, opts.Name)
	if err != nil {
		return f.Fail(fmt.Sprintf("failed to parse %s", path), err)
	}

	if opts.Into == "" {
		stmt, err := to.Emit(r, nil)
		if err != nil {
			return f.Fail("failed to emit", err)
		}
		return emitOutput(opts, f, EmitResult{Source: syntax.Unparse(&syntax.Module{Body: []syntax.Stmt{stmt}}), Created: true})
	}

	target := opts.Target
	if target == "" {
		target = opts.Name
	}
	dst, err := conformance.LoadTarget(ctx, opts.Into, target)
	if err != nil {
		return f.Fail("failed to load --into", err)
	}
	out, created, err := emitInto(to, r, dst.Module, target)
	if err != nil {
		return f.Fail(fmt.Sprintf("failed to emit into %s", opts.Into), err)
	}

	res := EmitResult{Source: string(out), Into: opts.Into, Created: created}
	if opts.Write {
		if err := conformance.WriteSource(opts.Into, out); err != nil {
			return f.Fail("failed to write", err)
		}
		res.Written = true
	}
	return emitOutput(opts, f, res)
}

// emitInto renders r through v in place of the definition called name in
// mod and returns the patched source. The existing definition keeps its own
// body. A missing top-level definition is synthesized and appended; a
// missing nested one is an error.
func emitInto(v views.View, r *ir.IR, mod *syntax.Module, name string) ([]byte, bool, error) {
	existing, err := syntax.Lookup(mod, name)
	if ir.IsNameNotFound(err) && !strings.Contains(name, ".") {
		patch := r.Clone()
		patch.Name = name
		stmt, err := v.Emit(patch, nil)
		if err != nil {
			return nil, false, err
		}
		return syntax.Extend(mod, stmt), true, nil
	}
	if err != nil {
		return nil, false, err
	}

	own, err := v.Parse(existing, name)
	if err != nil {
		return nil, false, err
	}
	patch := r.Clone()
	patch.Internal = own.Internal
	stmt, err := v.Emit(patch, existing)
	if err != nil {
		return nil, false, err
	}
	out, err := syntax.Patch(mod, name, stmt)
	if err != nil {
		return nil, false, err
	}
	return out, false, nil
}

func emitOutput(opts *EmitOptions, f *OutputFormatter, res EmitResult) error {
	if opts.Format == "json" {
		return f.Success(res)
	}
	if res.Written {
		f.VerboseLog("wrote %s", res.Into)
		return nil
	}
	_, err := fmt.Fprint(f.Writer, res.Source)
	return err
}
