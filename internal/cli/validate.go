package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lmoretti/petrivet/internal/reduce"
	"github.com/lmoretti/petrivet/internal/store"
	"github.com/lmoretti/petrivet/internal/tracelog"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Trace    string // literal trace instead of a log file
	Database string // optional run-history database
}

// ValidationResult holds the outcome of one trace validation.
type ValidationResult struct {
	Verdict     string `json:"verdict"`
	Invariants  int    `json:"invariants"`
	Passes      int    `json:"passes"`
	Routes      []int  `json:"routes"`
	Residue     string `json:"residue,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Source      string `json:"source"`
	RunID       string `json:"run_id,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [log-file]",
		Short: "Reduce a firing trace to a verdict",
		Long: `Reduce a firing trace until it is empty or stops shrinking.

The trace is the first line of the log file, or a literal passed with
--trace. Each pass strips every complete client visit; validation
succeeds when nothing is left and fails when a pass makes no progress.

Exit codes:
  0 - Trace reduced to nothing
  1 - Trace left a residue
  2 - Command error (unreadable file, database error, etc.)

Examples:
  petrivet validate run.log
  petrivet validate run.log --db runs.db
  petrivet validate --trace "T0 T1 T3 T4 T7 T8 T11 "
  petrivet validate run.log --format json --verbose`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Trace, "trace", "", "literal trace to validate instead of a log file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runValidate(opts *ValidateOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	source, trace, err := resolveTrace(opts, args)
	if err != nil {
		_ = formatter.Error(ErrCodeTraceRead, err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot resolve trace", err)
	}

	formatter.VerboseLog("validating %s (%d bytes)", source, len(trace))

	outcome := reduce.Run(trace)
	for _, pass := range outcome.Passes {
		formatter.VerboseLog("pass %d: %d matches, %d bytes remain",
			pass.Seq, pass.Matches, len(pass.Residue))
	}

	result := ValidationResult{
		Verdict:     outcome.Verdict.String(),
		Invariants:  outcome.Invariants,
		Passes:      len(outcome.Passes),
		Routes:      outcome.Paths[:],
		Residue:     outcome.Residue,
		Fingerprint: tracelog.Fingerprint(trace),
		Source:      source,
	}

	if opts.Database != "" {
		runID, err := recordRun(cmd.Context(), opts.Database, source, trace, outcome)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot record run", err)
		}
		result.RunID = runID
		formatter.VerboseLog("recorded as run %s", runID)
	}

	return outputValidationResult(formatter, result)
}

// resolveTrace picks the trace source: the --trace literal or the first
// line of the log file argument. Exactly one must be given.
func resolveTrace(opts *ValidateOptions, args []string) (source, trace string, err error) {
	switch {
	case opts.Trace != "" && len(args) > 0:
		return "", "", fmt.Errorf("either a log file or --trace, not both")
	case opts.Trace != "":
		return "literal", opts.Trace, nil
	case len(args) > 0:
		trace, err := tracelog.ReadTrace(args[0])
		if err != nil {
			return "", "", err
		}
		return args[0], trace, nil
	default:
		return "", "", fmt.Errorf("a log file argument or --trace is required")
	}
}

// recordRun persists the validation outcome, keyed by trace fingerprint.
// A trace validated twice keeps its first run ID.
func recordRun(ctx context.Context, dbPath, source, trace string, outcome reduce.Outcome) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	run := store.Run{
		ID:          store.NewRunID(),
		Fingerprint: tracelog.Fingerprint(trace),
		Source:      source,
		Verdict:     outcome.Verdict.String(),
		Invariants:  outcome.Invariants,
		Residue:     outcome.Residue,
		Trace:       trace,
		Routes:      outcome.Paths[:],
		CreatedAt:   time.Now().UTC(),
	}

	inserted, err := st.WriteRun(ctx, run, outcome.Passes)
	if err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}
	if inserted {
		return run.ID, nil
	}

	// Duplicate trace: surface the run that already holds it.
	existing, err := st.FindRunByFingerprint(ctx, run.Fingerprint)
	if err != nil {
		return "", fmt.Errorf("find existing run: %w", err)
	}
	return existing.ID, nil
}

// outputValidationResult renders the result and maps the verdict to an
// exit code.
func outputValidationResult(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		if result.Verdict == reduce.Success.String() {
			return formatter.Success(result)
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    "E_VALIDATION_FAILED",
				Message: fmt.Sprintf("trace left %d bytes of residue", len(result.Residue)),
			},
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "trace validation failed")
	}

	// Text format
	if result.Verdict == reduce.Success.String() {
		fmt.Fprintf(formatter.Writer, "✓ %s: %d invariants completed in %d passes\n",
			result.Source, result.Invariants, result.Passes)
		if result.RunID != "" {
			fmt.Fprintf(formatter.Writer, "  recorded as %s\n", result.RunID)
		}
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✗ %s: trace does not reduce\n", result.Source)
	fmt.Fprintf(formatter.Writer, "  completed: %d invariants in %d passes\n",
		result.Invariants, result.Passes)
	fmt.Fprintf(formatter.Writer, "  residue: %s\n", result.Residue)
	if result.RunID != "" {
		fmt.Fprintf(formatter.Writer, "  recorded as %s\n", result.RunID)
	}
	return NewExitError(ExitFailure, "trace validation failed")
}
