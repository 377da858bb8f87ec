package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SamuelMarks/docstring2class/internal/config"
	"github.com/SamuelMarks/docstring2class/internal/conformance"
	"github.com/SamuelMarks/docstring2class/internal/logging"
	"github.com/SamuelMarks/docstring2class/internal/store"
	"github.com/SamuelMarks/docstring2class/internal/views"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Manifest string
	Truth    string

	CLI, Class, Function             string
	CLIName, ClassName, FunctionName string

	MergeInner string
	InferType  bool
}

// SyncResult is the JSON payload of a sync run.
type SyncResult struct {
	*conformance.Result
	RunID   string   `json:"run_id,omitempty"`
	DryRun  bool     `json:"dry_run"`
	Written []string `json:"written"`
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the three representations against the truth",
		Long: `Parse the argparse, class and function representations of one interface,
take the IR of the one named by --truth as canonical, and rewrite every
other representation that differs from it.

One line per representation is printed, always in the order cli, class,
function:

  unchanged	argparse.py
  modified	classes.py
  unchanged	methods.py

Exit codes:
  0 - Reconciled (files may have been modified)
  1 - Reconciliation refused (unknown name, conflicting body and doc)
  2 - Command error (missing files, invalid manifest, ledger failure)

Examples:
  doctrans sync --truth cli --cli argparse.py --class classes.py --function methods.py
  doctrans sync --manifest doctrans.yaml --dry-run
  doctrans sync --manifest doctrans.yaml --ledger runs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Manifest, "manifest", "m", "", "YAML manifest naming the targets and the truth")
	flags.StringVar(&opts.Truth, "truth", "", "representation taken as ground truth (cli|class|function)")
	flags.StringVar(&opts.CLI, "cli", "", "file holding the argparse registration function")
	flags.StringVar(&opts.Class, "class", "", "file holding the class")
	flags.StringVar(&opts.Function, "function", "", "file holding the function")
	flags.StringVar(&opts.CLIName, "cli-name", views.DefaultCLIName, "lookup name of the registration function")
	flags.StringVar(&opts.ClassName, "class-name", "ConfigClass", "lookup name of the class")
	flags.StringVar(&opts.FunctionName, "function-name", "C.method_name", "lookup name of the function (dotted for methods)")
	flags.StringVar(&opts.MergeInner, "merge-inner", "", "class method whose params fill the gaps of the class")
	flags.BoolVar(&opts.InferType, "infer-type", false, "infer missing types from default values")
	flags.Bool("dry-run", false, "report without writing files")
	flags.String("ledger", "", "SQLite ledger recording every run")
	rootOpts.bind(config.KeyDryRun, flags.Lookup("dry-run"))
	rootOpts.bind(config.KeyLedger, flags.Lookup("ledger"))

	return cmd
}

func runSync(opts *SyncOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx, err := opts.context(cmd)
	if err != nil {
		return err
	}
	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	req, err := opts.request(ctx)
	if err != nil {
		return f.Fail("failed to load representations", err)
	}

	res, err := conformance.GroundTruth(ctx, req)
	if err != nil {
		return f.Fail("reconciliation refused", err)
	}

	out := SyncResult{Result: res, DryRun: cfg.DryRun, Written: []string{}}
	if !cfg.DryRun {
		written, err := conformance.WriteModified(res)
		out.Written = append(out.Written, written...)
		if err != nil {
			return f.Fail("failed to write modified files", err)
		}
	}

	if cfg.Ledger != "" {
		out.RunID, err = record(ctx, cfg.Ledger, res, cfg.DryRun)
		if err != nil {
			return f.Fail("failed to record run", err)
		}
	}

	if opts.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: out, RunID: out.RunID})
	}
	if err := res.WriteReport(f.Writer); err != nil {
		return err
	}
	for _, o := range res.Modified() {
		f.VerboseLog("%s %s (-own +canonical):\n%s", o.Kind, o.Location, o.Diff)
	}
	return nil
}

// request builds the reconciliation request from the manifest or flags.
// Flags given next to a manifest override its truth and options.
func (o *SyncOptions) request(ctx context.Context) (conformance.Request, error) {
	defaults, err := o.ViewOptions()
	if err != nil {
		return conformance.Request{}, err
	}
	if o.InferType {
		defaults.InferType = true
	}

	if o.Manifest != "" {
		m, err := conformance.LoadManifest(o.Manifest)
		if err != nil {
			return conformance.Request{}, WrapExitError(ExitCommandError, "failed to load manifest", err)
		}
		req, err := m.Request(ctx, defaults)
		if err != nil {
			return conformance.Request{}, err
		}
		if o.Truth != "" {
			req.Truth = o.Truth
		}
		if o.MergeInner != "" {
			req.MergeInner = o.MergeInner
		}
		return req, nil
	}

	if o.Truth == "" {
		return conformance.Request{}, NewExitError(ExitCommandError, "either --manifest or --truth is required")
	}
	req := conformance.Request{Truth: o.Truth, Options: defaults, MergeInner: o.MergeInner}
	for _, t := range []struct {
		dst        *conformance.Target
		flag, path string
		name       string
	}{
		{&req.CLI, "--cli", o.CLI, o.CLIName},
		{&req.Class, "--class", o.Class, o.ClassName},
		{&req.Function, "--function", o.Function, o.FunctionName},
	} {
		if t.path == "" {
			return conformance.Request{}, NewExitError(ExitCommandError, fmt.Sprintf("%s is required without --manifest", t.flag))
		}
		target, err := conformance.LoadTarget(ctx, t.path, t.name)
		if err != nil {
			return conformance.Request{}, err
		}
		*t.dst = target
	}
	return req, req.Validate()
}

// record appends the run to the ledger at path and returns its id.
func record(ctx context.Context, path string, res *conformance.Result, dryRun bool) (string, error) {
	st, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	canonical, err := store.MarshalIR(res.Canonical)
	if err != nil {
		return "", err
	}

	logger := logging.FromContext(ctx)
	prev, err := st.LastFingerprint(ctx)
	if err != nil {
		return "", err
	}
	if prev != "" && prev != res.Fingerprint {
		logger.Info().Str("previous", prev).Str("fingerprint", res.Fingerprint).Msg("canonical IR changed since last run")
	}

	run := &store.Run{
		Truth:       res.Truth,
		Fingerprint: res.Fingerprint,
		Canonical:   canonical,
		DryRun:      dryRun,
	}
	for _, o := range res.Outcomes {
		run.Results = append(run.Results, store.Result{
			Kind:     o.Kind,
			Location: o.Location,
			Name:     o.Name,
			Status:   string(o.Status),
		})
	}
	if err := st.RecordRun(ctx, run); err != nil {
		return "", err
	}
	logger.Debug().Str("run_id", run.ID).Int64("seq", run.Seq).Msg("run recorded")
	return run.ID, nil
}
