package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// countingRunner records invocations and returns a fixed error.
type countingRunner struct {
	calls int
	err   error
}

func (r *countingRunner) Run(ctx context.Context) error {
	r.calls++
	return r.err
}

func TestLauncher_MissingEnvironment(t *testing.T) {
	runner := &countingRunner{}
	var out strings.Builder

	l := &Launcher{
		EnvDir: filepath.Join(t.TempDir(), "does-not-exist"),
		Runner: runner,
		Out:    &out,
	}

	err := l.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail when the environment dir is absent")
	}

	var lerr *Error
	if !errors.As(err, &lerr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if lerr.Kind != MissingEnvironment {
		t.Errorf("Kind = %v, want MissingEnvironment", lerr.Kind)
	}
	if runner.calls != 0 {
		t.Errorf("runner called %d times, want 0", runner.calls)
	}
	if !strings.Contains(out.String(), "not found") {
		t.Errorf("output %q should mention the missing environment", out.String())
	}
	if ExitCode(err) != 1 {
		t.Errorf("ExitCode = %d, want 1", ExitCode(err))
	}
}

func TestLauncher_EnvDirIsFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "venv")
	if err := os.WriteFile(envPath, []byte("not a dir"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	runner := &countingRunner{}
	l := &Launcher{EnvDir: envPath, Runner: runner, Out: &strings.Builder{}}

	err := l.Run(context.Background())
	var lerr *Error
	if !errors.As(err, &lerr) || lerr.Kind != MissingEnvironment {
		t.Fatalf("error = %v, want MissingEnvironment", err)
	}
	if runner.calls != 0 {
		t.Errorf("runner called %d times, want 0", runner.calls)
	}
}

func TestLauncher_Success(t *testing.T) {
	runner := &countingRunner{}
	var out strings.Builder

	l := &Launcher{
		EnvDir:     t.TempDir(),
		Runner:     runner,
		Out:        &out,
		ResultPath: "output/analysis/custom_analysis.json",
	}

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if runner.calls != 1 {
		t.Errorf("runner called %d times, want 1", runner.calls)
	}
	if !strings.Contains(out.String(), "completed successfully") {
		t.Errorf("output %q should contain the success message", out.String())
	}
	if !strings.Contains(out.String(), "output/analysis/custom_analysis.json") {
		t.Errorf("output %q should mention the result path", out.String())
	}
	if ExitCode(nil) != 0 {
		t.Errorf("ExitCode(nil) = %d, want 0", ExitCode(nil))
	}
}

func TestLauncher_SubprocessFailure(t *testing.T) {
	runner := &countingRunner{err: fmt.Errorf("exit status 7")}
	var out strings.Builder

	l := &Launcher{EnvDir: t.TempDir(), Runner: runner, Out: &out}

	err := l.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail when the runner fails")
	}

	var lerr *Error
	if !errors.As(err, &lerr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if lerr.Kind != SubprocessFailure {
		t.Errorf("Kind = %v, want SubprocessFailure", lerr.Kind)
	}
	if runner.calls != 1 {
		t.Errorf("runner called %d times, want exactly 1 (no retry)", runner.calls)
	}
	if !strings.Contains(out.String(), "failed") {
		t.Errorf("output %q should contain the failure message", out.String())
	}

	// The child's exit code is classified, never propagated
	if ExitCode(err) != 1 {
		t.Errorf("ExitCode = %d, want 1", ExitCode(err))
	}
}

func TestRunnerFunc(t *testing.T) {
	called := false
	f := RunnerFunc(func(ctx context.Context) error {
		called = true
		return nil
	})

	if err := f.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !called {
		t.Error("RunnerFunc should invoke the wrapped function")
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("exit status 1")
	err := &Error{Kind: SubprocessFailure, Path: "venv", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
	if !strings.Contains(err.Error(), "subprocess failure") {
		t.Errorf("Error() = %q, want kind name included", err.Error())
	}
}

func TestActivatedEnv(t *testing.T) {
	env := []string{
		"HOME=/home/u",
		"PATH=/usr/bin:/bin",
		"PYTHONHOME=/opt/python",
		"VIRTUAL_ENV=/old/venv",
	}

	got := activatedEnv(env, "/proj/venv")

	var path, virtualEnv string
	for _, kv := range got {
		if strings.HasPrefix(kv, "PATH=") {
			path = kv
		}
		if strings.HasPrefix(kv, "VIRTUAL_ENV=") {
			virtualEnv = kv
		}
		if strings.HasPrefix(kv, "PYTHONHOME=") {
			t.Errorf("PYTHONHOME should be dropped, found %q", kv)
		}
	}

	wantPrefix := "PATH=" + filepath.Join("/proj/venv", "bin") + string(os.PathListSeparator)
	if !strings.HasPrefix(path, wantPrefix) {
		t.Errorf("PATH = %q, want prefix %q", path, wantPrefix)
	}
	if !strings.HasSuffix(path, "/usr/bin:/bin") {
		t.Errorf("PATH = %q, should keep the original entries", path)
	}
	if virtualEnv != "VIRTUAL_ENV=/proj/venv" {
		t.Errorf("VIRTUAL_ENV = %q, want /proj/venv", virtualEnv)
	}
}

func TestActivatedEnv_NoPath(t *testing.T) {
	got := activatedEnv([]string{"HOME=/home/u"}, "/proj/venv")

	found := false
	for _, kv := range got {
		if kv == "PATH="+filepath.Join("/proj/venv", "bin") {
			found = true
		}
	}
	if !found {
		t.Errorf("env %v should contain a PATH entry with the venv bin dir", got)
	}
}
