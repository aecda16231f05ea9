// Package orchestrator decides how a tool invocation runs: straight from
// the cache, or through the install-and-run fallback, with an optional
// best-effort background refresh that never delays or alters the foreground
// result.
package orchestrator

import (
	"context"

	"pkgrun/internal/cache"
	"pkgrun/internal/launcher"
	"pkgrun/internal/registry"
	"pkgrun/internal/toolref"
	"pkgrun/internal/version"
)

// Logger is the minimal logging surface this package needs.
type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Orchestrator wires the cache inspector, registry client and process
// launcher behind one execution entry point. All collaborators are
// capability interfaces so tests substitute them freely.
type Orchestrator struct {
	Cache    cache.Inspector
	Registry registry.Client
	Launcher launcher.Runner
	Log      Logger
}

// New builds an orchestrator. A nil logger is replaced with a no-op one.
func New(inspector cache.Inspector, client registry.Client, runner launcher.Runner, log Logger) *Orchestrator {
	if log == nil {
		log = noopLogger{}
	}
	return &Orchestrator{
		Cache:    inspector,
		Registry: client,
		Launcher: runner,
		Log:      log,
	}
}

func (o *Orchestrator) logf(format string, v ...any) {
	if o == nil || o.Log == nil {
		return
	}
	o.Log.Printf(format, v...)
}

// Execute runs the referenced tool and returns its exit code.
//
// For an unpinned reference with updates enabled, a background refresh
// starts before the cache is even consulted and is joined before returning,
// so the process never exits while background I/O is still touching the
// cache. Its outcome, success or failure, never changes the exit code the
// foreground execution produced.
func (o *Orchestrator) Execute(ctx context.Context, ref toolref.Ref, args []string, skipUpdate bool) int {
	if ctx == nil {
		ctx = context.Background()
	}

	var refreshDone chan struct{}
	if !ref.Pinned() && !skipUpdate {
		refreshDone = make(chan struct{})
		go func() {
			defer close(refreshDone)
			o.refresh(ref.PackageID)
		}()
	}

	var code int
	if entryPoint, ok := o.Cache.ExecutablePath(ref.PackageID, ref.Version); ok {
		o.logf("running cached entry point %s", entryPoint)
		code = o.Launcher.ExecuteFromCache(ctx, entryPoint, args)
	} else {
		o.logf("no cached copy of %s, using install-and-run fallback", ref.String())
		code = o.Launcher.Execute(ctx, ref, args)
	}

	if refreshDone != nil {
		<-refreshDone
	}
	return code
}

// refresh checks the registry for a newer version and downloads it for a
// future invocation. It runs on a background context deliberately detached
// from the foreground one: a cancelled run must not truncate an in-flight
// cache write. Every failure, panics included, is logged and discarded.
func (o *Orchestrator) refresh(packageID string) {
	defer func() {
		if r := recover(); r != nil {
			o.logf("background refresh of %s panicked: %v", packageID, r)
		}
	}()

	ctx := context.Background()
	current, cached := o.Cache.GetTool(packageID)

	latest, err := o.Registry.LatestVersion(ctx, packageID)
	if err != nil {
		o.logf("background refresh of %s: %v", packageID, err)
		return
	}

	if cached && !IsNewerVersion(latest, current.Version) {
		o.logf("%s is up to date at %s", packageID, current.Version)
		return
	}

	if _, err := o.Registry.Download(ctx, packageID, latest); err != nil {
		o.logf("background download of %s@%s: %v", packageID, latest, err)
		return
	}
	o.logf("cached %s@%s for the next invocation", packageID, latest)
}

// IsNewerVersion reports whether candidate should replace baseline: both
// parse as version identifiers and candidate compares greater, or, when
// either fails to parse, candidate is case-insensitive-string-greater.
func IsNewerVersion(candidate, baseline string) bool {
	return version.IsNewer(candidate, baseline)
}
