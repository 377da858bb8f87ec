package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SamuelMarks/docstring2class/internal/conformance"
	"github.com/SamuelMarks/docstring2class/internal/ir"
	"github.com/SamuelMarks/docstring2class/internal/views"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Kind       string
	Name       string
	MergeInner string
	InferType  bool
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Print the IR of one representation as JSON",
		Long: `Parse the definition called --name in FILE through the view named by
--kind and print the resulting IR.

Examples:
  doctrans parse --kind class --name ConfigClass classes.py
  doctrans parse --kind function --name C.method_name methods.py
  doctrans parse --kind docstring --name load_data methods.py --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", fmt.Sprintf("view kind (%s)", strings.Join(views.ValidKinds, "|")))
	_ = cmd.MarkFlagRequired("kind")
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "dotted lookup name of the definition")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.MergeInner, "merge-inner", "", "class method whose params fill the gaps of the class")
	cmd.Flags().BoolVar(&opts.InferType, "infer-type", false, "infer missing types from default values")

	return cmd
}

func runParse(opts *ParseOptions, cmd *cobra.Command, path string) error {
	f := opts.formatter(cmd)
	ctx, err := opts.context(cmd)
	if err != nil {
		return err
	}
	viewOpts, err := opts.ViewOptions()
	if err != nil {
		return err
	}
	viewOpts.InferType = viewOpts.InferType || opts.InferType

	v, err := newView(opts.Kind, viewOpts, opts.MergeInner)
	if err != nil {
		return f.Fail("invalid --kind", err)
	}
	target, err := conformance.LoadTarget(ctx, path, opts.Name)
	if err != nil {
		return f.Fail("failed to load source", err)
	}
	r, err := v.Parse(target.Module, opts.Name)
	if err != nil {
		return f.Fail(fmt.Sprintf("failed to parse %s", path), err)
	}

	if opts.Format == "json" {
		return f.Success(r)
	}
	text, err := indentIR(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f.Writer, text)
	return err
}

// newView returns the view for kind; mergeInner only applies to classes.
func newView(kind string, opts views.Options, mergeInner string) (views.View, error) {
	if kind == views.KindClass {
		return views.ClassView{Options: opts, MergeInner: mergeInner}, nil
	}
	return views.New(kind, opts)
}

func indentIR(r *ir.IR) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
