// Package launcher spawns tool processes with the launcher's own standard
// streams, so the child behaves as if invoked directly.
package launcher

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"pkgrun/internal/toolref"
)

// Runner is the capability surface the orchestrator consumes.
type Runner interface {
	// Execute runs the install-and-run fallback command for a reference the
	// cache could not satisfy. Returns the child's exit code, or 1 when the
	// process could not be started at all.
	Execute(ctx context.Context, ref toolref.Ref, args []string) int

	// ExecuteFromCache runs a located cached entry point directly, same
	// contract as Execute.
	ExecuteFromCache(ctx context.Context, entryPoint string, args []string) int
}

// Logger is the minimal logging surface this package needs.
type Logger interface {
	Printf(format string, v ...any)
}

// CmdRunner executes real processes. Stdin, stdout and stderr are inherited
// unmodified; the child's stdout may carry a structured wire protocol and
// must never be buffered or rewritten here.
type CmdRunner struct {
	// Fallback is the install-and-run command invoked on a cache miss. It
	// receives the canonical tool reference followed by the pass-through
	// arguments.
	Fallback []string
	Log      Logger
}

var _ Runner = CmdRunner{}

func (r CmdRunner) logf(format string, v ...any) {
	if r.Log == nil {
		return
	}
	r.Log.Printf(format, v...)
}

func (r CmdRunner) Execute(ctx context.Context, ref toolref.Ref, args []string) int {
	if len(r.Fallback) == 0 {
		r.logf("no install-and-run fallback command configured")
		return 1
	}

	argv := append([]string{}, r.Fallback[1:]...)
	argv = append(argv, ref.String())
	argv = append(argv, args...)
	return r.run(ctx, r.Fallback[0], argv)
}

func (r CmdRunner) ExecuteFromCache(ctx context.Context, entryPoint string, args []string) int {
	return r.run(ctx, entryPoint, args)
}

// run blocks until the child exits. No timeout is imposed here; any deadline
// is the caller's responsibility via ctx.
func (r CmdRunner) run(ctx context.Context, command string, args []string) int {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		r.logf("start %s: %v", command, err)
		return 1
	}
	return 0
}
