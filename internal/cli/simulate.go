package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lmoretti/petrivet/internal/config"
	"github.com/lmoretti/petrivet/internal/petri"
	"github.com/lmoretti/petrivet/internal/reduce"
	"github.com/lmoretti/petrivet/internal/sim"
	"github.com/lmoretti/petrivet/internal/tracelog"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Config   string // CUE config file, defaults apply when empty
	Out      string // log report destination, stdout when empty
	Validate bool   // reduce the produced trace immediately
	Database string // record the validated run here (implies --validate)
}

// SimulationResult holds the summary of one simulation run.
type SimulationResult struct {
	Policy      string            `json:"policy"`
	Timing      string            `json:"timing"`
	Seed        uint64            `json:"seed"`
	Target      int               `json:"target"`
	Firings     int               `json:"firings"`
	Exits       int               `json:"exits"`
	Drained     bool              `json:"drained"`
	ElapsedMS   int64             `json:"elapsed_ms"`
	Completions []int             `json:"completions"`
	Out         string            `json:"out,omitempty"`
	Validation  *ValidationResult `json:"validation,omitempty"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the travel agency net and write its firing trace",
		Long: `Run the travel agency net until the configured number of clients
has left, then write the log report: the firing trace on the first
line followed by per-transition counts and completed invariants.

Configuration comes from a CUE file; every field has a default, so the
command runs without one. With --validate the produced trace is reduced
immediately and the command fails if it does not come out clean.

Examples:
  petrivet simulate
  petrivet simulate --config sim.cue --out run.log
  petrivet simulate --validate --db runs.db
  petrivet simulate --format json --validate`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "CUE configuration file")
	cmd.Flags().StringVar(&opts.Out, "out", "", "write the log report to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.Validate, "validate", false, "reduce the produced trace immediately")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the validated run in this SQLite database (implies --validate)")

	return cmd
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot load config", err)
		}
		cfg = loaded
	}
	formatter.VerboseLog("config: policy=%s timing=%s seed=%d firings=%d drain=%t",
		cfg.Policy, cfg.Timing, cfg.Seed, cfg.Firings, cfg.Drain)

	result, report, err := simulate(cfg)
	if err != nil {
		_ = formatter.Error(ErrCodeSimulation, err.Error(), nil)
		return WrapExitError(ExitCommandError, "simulation failed", err)
	}

	rendered := report.Render()
	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, []byte(rendered), 0644); err != nil {
			_ = formatter.Error(ErrCodeTraceRead, err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot write log report", err)
		}
		result.Out = opts.Out
		formatter.VerboseLog("log report written to %s", opts.Out)
	}

	if opts.Validate || opts.Database != "" {
		trace := tracelog.FormatSequence(report.Sequence)
		outcome := reduce.Run(trace)
		validation := &ValidationResult{
			Verdict:     outcome.Verdict.String(),
			Invariants:  outcome.Invariants,
			Passes:      len(outcome.Passes),
			Routes:      outcome.Paths[:],
			Residue:     outcome.Residue,
			Fingerprint: tracelog.Fingerprint(trace),
			Source:      "sim",
		}
		if opts.Database != "" {
			runID, err := recordRun(cmd.Context(), opts.Database, "sim", trace, outcome)
			if err != nil {
				_ = formatter.Error(ErrCodeStore, err.Error(), nil)
				return WrapExitError(ExitCommandError, "cannot record run", err)
			}
			validation.RunID = runID
		}
		result.Validation = validation
	}

	return outputSimulationResult(formatter, result, rendered, opts.Out == "")
}

// simulate builds and runs the simulator from a config.
func simulate(cfg config.Config) (SimulationResult, tracelog.Report, error) {
	policy, err := sim.PolicyFor(cfg.Policy, cfg.Seed)
	if err != nil {
		return SimulationResult{}, tracelog.Report{}, err
	}
	alphas, err := petri.Timing(cfg.Timing)
	if err != nil {
		return SimulationResult{}, tracelog.Report{}, err
	}

	s, err := sim.New(
		sim.WithPolicy(policy),
		sim.WithTiming(alphas),
		sim.WithExitTarget(cfg.Firings),
		sim.WithDrain(cfg.Drain),
	)
	if err != nil {
		return SimulationResult{}, tracelog.Report{}, err
	}

	res, err := s.Run()
	if err != nil {
		return SimulationResult{}, tracelog.Report{}, err
	}

	report := tracelog.Report{
		Sequence:    res.Sequence,
		Firings:     res.Firings,
		Completions: res.Completions,
		Invariants:  petri.AgencyInvariants(),
	}
	result := SimulationResult{
		Policy:      cfg.Policy,
		Timing:      cfg.Timing,
		Seed:        cfg.Seed,
		Target:      cfg.Firings,
		Firings:     len(res.Sequence),
		Exits:       res.Firings[petri.TExit],
		Drained:     res.Drained,
		ElapsedMS:   res.Elapsed.Milliseconds(),
		Completions: res.Completions,
	}
	return result, report, nil
}

// outputSimulationResult renders the summary. When the report was not
// written to a file it goes to stdout first, above the summary.
func outputSimulationResult(formatter *OutputFormatter, result SimulationResult, rendered string, reportToStdout bool) error {
	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
		return simulationExitStatus(result)
	}

	w := formatter.Writer
	if reportToStdout {
		fmt.Fprint(w, rendered)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "policy %s, timing %s, seed %d\n", result.Policy, result.Timing, result.Seed)
	drained := "still loaded"
	if result.Drained {
		drained = "drained"
	}
	fmt.Fprintf(w, "%d exits in %d firings (%s), virtual elapsed %dms\n",
		result.Exits, result.Firings, drained, result.ElapsedMS)

	if v := result.Validation; v != nil {
		if v.Verdict == reduce.Success.String() {
			fmt.Fprintf(w, "✓ trace validated: %d invariants in %d passes\n", v.Invariants, v.Passes)
		} else {
			fmt.Fprintf(w, "✗ trace left residue: %s\n", strings.TrimRight(v.Residue, " "))
		}
		if v.RunID != "" {
			fmt.Fprintf(w, "  recorded as %s\n", v.RunID)
		}
	}

	return simulationExitStatus(result)
}

// simulationExitStatus maps a failed validation to exit code 1.
func simulationExitStatus(result SimulationResult) error {
	if v := result.Validation; v != nil && v.Verdict != reduce.Success.String() {
		return NewExitError(ExitFailure, "simulated trace failed validation")
	}
	return nil
}
