package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lmoretti/petrivet/internal/reduce"
	"github.com/lmoretti/petrivet/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	RunID    string
	Limit    int
}

// RunSummary is one run in the history listing.
type RunSummary struct {
	ID         string `json:"id"`
	CreatedAt  string `json:"created_at"`
	Source     string `json:"source"`
	Verdict    string `json:"verdict"`
	Invariants int    `json:"invariants"`
}

// RunDetail is one run with its reduction passes.
type RunDetail struct {
	RunSummary
	Fingerprint string        `json:"fingerprint"`
	Policy      string        `json:"policy,omitempty"`
	Timing      string        `json:"timing,omitempty"`
	Routes      []int         `json:"routes"`
	Residue     string        `json:"residue,omitempty"`
	Trace       string        `json:"trace"`
	Passes      []reduce.Pass `json:"passes"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded validation runs",
		Long: `Browse validation runs recorded in a SQLite database.

Without flags the newest runs are listed. With --run a single run is
shown in full, including its reduction passes.

Examples:
  petrivet history --db runs.db
  petrivet history --db runs.db --limit 5
  petrivet history --db runs.db --run 019205f2-...
  petrivet history --db runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show this run in full")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot open database", err)
	}
	defer st.Close()

	if opts.RunID != "" {
		return showRun(ctx, st, formatter, opts.RunID)
	}
	return listRuns(ctx, st, formatter, opts.Limit)
}

func listRuns(ctx context.Context, st *store.Store, formatter *OutputFormatter, limit int) error {
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot list runs", err)
	}

	summaries := make([]RunSummary, len(runs))
	for i, run := range runs {
		summaries[i] = summarize(run)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"runs": summaries})
	}

	if len(summaries) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}

	for _, s := range summaries {
		glyph := "✓"
		if s.Verdict != reduce.Success.String() {
			glyph = "✗"
		}
		fmt.Fprintf(formatter.Writer, "%s %s  %s  %-8s %4d invariants  %s\n",
			glyph, s.ID, s.CreatedAt, s.Verdict, s.Invariants, s.Source)
	}
	return nil
}

func showRun(ctx context.Context, st *store.Store, formatter *OutputFormatter, runID string) error {
	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, sql.ErrNoRows) {
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("run not found: %s", runID), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot read run", err)
	}

	passes, err := st.ReadPasses(ctx, runID)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot read passes", err)
	}

	detail := RunDetail{
		RunSummary:  summarize(run),
		Fingerprint: run.Fingerprint,
		Policy:      run.Policy,
		Timing:      run.Timing,
		Routes:      run.Routes,
		Residue:     run.Residue,
		Trace:       run.Trace,
		Passes:      passes,
	}

	if formatter.Format == "json" {
		return formatter.Success(detail)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "run %s\n", detail.ID)
	fmt.Fprintf(w, "  created:     %s\n", detail.CreatedAt)
	fmt.Fprintf(w, "  source:      %s\n", detail.Source)
	if detail.Policy != "" {
		fmt.Fprintf(w, "  policy:      %s\n", detail.Policy)
	}
	if detail.Timing != "" {
		fmt.Fprintf(w, "  timing:      %s\n", detail.Timing)
	}
	fmt.Fprintf(w, "  verdict:     %s\n", detail.Verdict)
	fmt.Fprintf(w, "  invariants:  %d\n", detail.Invariants)
	fmt.Fprintf(w, "  routes:      %v\n", detail.Routes)
	fmt.Fprintf(w, "  fingerprint: %s\n", detail.Fingerprint)
	if detail.Residue != "" {
		fmt.Fprintf(w, "  residue:     %s\n", detail.Residue)
	}
	formatter.VerboseLog("trace: %s", detail.Trace)

	fmt.Fprintln(w, "  passes:")
	for _, pass := range detail.Passes {
		fmt.Fprintf(w, "    %d: %d matches, %d bytes remain\n",
			pass.Seq, pass.Matches, len(pass.Residue))
	}
	return nil
}

// summarize flattens a stored run into its listing form.
func summarize(run store.Run) RunSummary {
	return RunSummary{
		ID:         run.ID,
		CreatedAt:  run.CreatedAt.UTC().Format(time.RFC3339),
		Source:     run.Source,
		Verdict:    run.Verdict,
		Invariants: run.Invariants,
	}
}
