package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/SamuelMarks/docstring2class/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Ledger string
	Limit  int
	RunID  string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded sync runs, newest first",
		Long: `List the runs recorded in a sync ledger, newest first, with the number of
representations each one modified.

Examples:
  doctrans history --ledger runs.db
  doctrans history --ledger runs.db --limit 5 --format json
  doctrans history --ledger runs.db --run 0192b6c4-...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "SQLite ledger (default from config)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 20, "maximum number of runs (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show one run with its per-representation results")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx, err := opts.context(cmd)
	if err != nil {
		return err
	}
	path := opts.Ledger
	if path == "" {
		cfg, err := opts.Config()
		if err != nil {
			return err
		}
		path = cfg.Ledger
	}
	if path == "" {
		return f.Fail("no ledger", NewExitError(ExitCommandError, "--ledger is required when no ledger is configured"))
	}

	st, err := store.Open(path)
	if err != nil {
		return f.Fail("failed to open ledger", err)
	}
	defer st.Close()

	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if err != nil {
			return f.Fail("failed to read run", err)
		}
		if opts.Format == "json" {
			return f.Success(run)
		}
		return writeRun(f, run)
	}

	runs, err := st.History(ctx, opts.Limit)
	if err != nil {
		return f.Fail("failed to read history", err)
	}
	if opts.Format == "json" {
		return f.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tCREATED\tTRUTH\tMODIFIED\tFINGERPRINT")
	for _, run := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			run.Seq,
			run.ID,
			run.CreatedAt.Format(time.RFC3339),
			run.Truth,
			modifiedColumn(&run),
			shortFingerprint(run.Fingerprint),
		)
	}
	return tw.Flush()
}

func writeRun(f *OutputFormatter, run *store.Run) error {
	fmt.Fprintf(f.Writer, "Run %s (seq %d)\n", run.ID, run.Seq)
	fmt.Fprintf(f.Writer, "Created: %s\n", run.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(f.Writer, "Truth: %s\n", run.Truth)
	fmt.Fprintf(f.Writer, "Fingerprint: %s\n", run.Fingerprint)
	fmt.Fprintln(f.Writer)
	for _, r := range run.Results {
		fmt.Fprintf(f.Writer, "%s\t%s\n", r.Status, r.Location)
	}
	f.VerboseLog("canonical: %s", run.Canonical)
	return nil
}

func modifiedColumn(run *store.Run) string {
	s := fmt.Sprintf("%d/%d", run.Modified(), len(run.Results))
	if run.DryRun {
		s += " (dry run)"
	}
	return s
}

func shortFingerprint(fp string) string {
	const n = 12
	if len(fp) > n {
		return fp[:n]
	}
	return fp
}
