package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lmoretti/petrivet/internal/reduce"
	"github.com/lmoretti/petrivet/internal/tracelog"
	"github.com/lmoretti/petrivet/internal/watch"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <log-file>",
		Short: "Re-validate a trace file on every change",
		Long: `Watch a trace log file and re-run validation whenever it changes.

The file is validated once at startup if it exists, then again after
each write, with rapid write bursts collapsed into one validation.
Runs until interrupted.

Examples:
  petrivet watch run.log
  petrivet watch run.log --debounce 2s`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watch.DefaultDebounce, "quiet period before re-validating")

	return cmd
}

func runWatch(opts *WatchOptions, path string, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	w, err := watch.New(path, func(p string) {
		revalidate(out, p)
	}, watch.WithDebounce(opts.Debounce))
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot watch file", err)
	}
	defer w.Stop()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := w.Start(ctx); err != nil {
		return WrapExitError(ExitCommandError, "cannot watch file", err)
	}

	fmt.Fprintf(out, "Watching %s. Press Ctrl-C to stop.\n", w.Path())
	if _, err := os.Stat(w.Path()); err == nil {
		revalidate(out, w.Path())
	}

	<-ctx.Done()
	return nil
}

// revalidate reduces the file's trace and prints a one-line verdict.
func revalidate(w io.Writer, path string) {
	stamp := time.Now().Format(time.TimeOnly)

	trace, err := tracelog.ReadTrace(path)
	if err != nil {
		fmt.Fprintf(w, "✗ %s  %v\n", stamp, err)
		return
	}

	outcome := reduce.Run(trace)
	if outcome.Verdict == reduce.Success {
		fmt.Fprintf(w, "✓ %s  %d invariants completed in %d passes\n",
			stamp, outcome.Invariants, len(outcome.Passes))
		return
	}
	fmt.Fprintf(w, "✗ %s  %d invariants completed, residue: %s\n",
		stamp, outcome.Invariants, outcome.Residue)
}
