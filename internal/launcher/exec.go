package launcher

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExecRunner invokes the external analysis program with the isolated
// environment activated: the environment's bin directory is prepended to
// PATH and VIRTUAL_ENV points at the environment, so the program resolves
// its interpreter and dependencies from there instead of the ambient system.
type ExecRunner struct {
	Program string    // Path to the analysis program
	EnvDir  string    // Environment directory to activate
	Dir     string    // Working directory for the program
	Stdout  io.Writer // Program output; defaults to os.Stdout
	Stderr  io.Writer // Program errors; defaults to os.Stderr
}

// Run executes the program synchronously and returns its failure, if any.
// The program runs exactly once; there is no timeout beyond ctx and no retry.
func (r *ExecRunner) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.Program)
	cmd.Dir = r.Dir
	cmd.Env = activatedEnv(os.Environ(), r.EnvDir)

	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	return cmd.Run()
}

// activatedEnv rewrites an environment list the way `source bin/activate`
// would: VIRTUAL_ENV set, bin dir first on PATH, PYTHONHOME dropped.
func activatedEnv(env []string, envDir string) []string {
	bin := filepath.Join(envDir, "bin")

	out := make([]string, 0, len(env)+2)
	pathSeen := false

	for _, kv := range env {
		switch {
		case strings.HasPrefix(kv, "PATH="):
			out = append(out, "PATH="+bin+string(os.PathListSeparator)+strings.TrimPrefix(kv, "PATH="))
			pathSeen = true
		case strings.HasPrefix(kv, "VIRTUAL_ENV="), strings.HasPrefix(kv, "PYTHONHOME="):
			// Replaced or dropped below
		default:
			out = append(out, kv)
		}
	}

	if !pathSeen {
		out = append(out, "PATH="+bin)
	}
	out = append(out, "VIRTUAL_ENV="+envDir)

	return out
}
