// Package launcher runs the daily analysis behind a precondition check.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ErrorKind classifies the two fatal launcher conditions.
type ErrorKind int

const (
	// MissingEnvironment means the runtime environment directory is absent.
	MissingEnvironment ErrorKind = iota + 1

	// SubprocessFailure means the analysis program reported failure.
	SubprocessFailure
)

// String returns the kind name for error messages.
func (k ErrorKind) String() string {
	switch k {
	case MissingEnvironment:
		return "missing environment"
	case SubprocessFailure:
		return "subprocess failure"
	default:
		return "unknown"
	}
}

// Error is a classified launcher failure.
type Error struct {
	Kind ErrorKind
	Path string // Environment dir (MissingEnvironment) or program path (SubprocessFailure)
	Err  error  // Underlying error, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Path)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode maps a launcher result to a process exit status. The launcher
// always exits 0 or 1; the child's own exit code is never propagated.
func ExitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

// Runner executes the analysis once. Implementations must not retry.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context) error

// Run calls f(ctx).
func (f RunnerFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Launcher checks the environment precondition, runs the analysis exactly
// once, and reports the outcome on Out.
type Launcher struct {
	EnvDir     string    // Directory that must exist before anything runs
	Runner     Runner    // The analysis to invoke
	Out        io.Writer // Status lines; defaults to os.Stdout
	ResultPath string    // Informational: where the analysis writes its result
}

// Run performs the launch sequence. The returned error, if any, is a *Error
// classifying the failure; status text has already been written to Out.
func (l *Launcher) Run(ctx context.Context) error {
	out := l.Out
	if out == nil {
		out = os.Stdout
	}

	info, err := os.Stat(l.EnvDir)
	if err != nil || !info.IsDir() {
		fmt.Fprintf(out, "Runtime environment not found at %s\n", l.EnvDir)
		fmt.Fprintf(out, "Create it first (for example: python3 -m venv %s) and install the analysis dependencies into it.\n", l.EnvDir)
		return &Error{Kind: MissingEnvironment, Path: l.EnvDir, Err: err}
	}

	fmt.Fprintln(out, "Running custom analysis...")

	if err := l.Runner.Run(ctx); err != nil {
		fmt.Fprintln(out, "Analysis failed.")
		return &Error{Kind: SubprocessFailure, Path: l.EnvDir, Err: err}
	}

	fmt.Fprintln(out, "Analysis completed successfully.")
	if l.ResultPath != "" {
		fmt.Fprintf(out, "Results written to %s\n", l.ResultPath)
	}
	fmt.Fprintln(out, "Tips:")
	fmt.Fprintln(out, "  - view the result with: tp show")
	fmt.Fprintln(out, "  - push it to your channels with: tp notify")
	fmt.Fprintln(out, "  - the analysis runs at most once per day; rerunning reuses today's result")

	return nil
}
