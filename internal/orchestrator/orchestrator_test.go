package orchestrator

import (
	"context"
	"errors"
	"testing"

	"pkgrun/internal/cache"
	"pkgrun/internal/toolref"
)

type fakeCache struct {
	entries   map[string]cache.Entry
	execPath  string
	execCalls int
}

func (f *fakeCache) ListInstalled() []cache.Entry {
	out := []cache.Entry{}
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out
}

func (f *fakeCache) GetTool(id string) (cache.Entry, bool) {
	e, ok := f.entries[id]
	return e, ok
}

func (f *fakeCache) GetToolVersions(id string) []cache.Entry {
	if e, ok := f.entries[id]; ok {
		return []cache.Entry{e}
	}
	return nil
}

func (f *fakeCache) RemoveTool(string) bool { return false }
func (f *fakeCache) ClearAll() int          { return 0 }

func (f *fakeCache) ExecutablePath(string, string) (string, bool) {
	f.execCalls++
	return f.execPath, f.execPath != ""
}

type fakeClient struct {
	latest        string
	latestErr     error
	downloadErr   error
	latestCalls   int
	downloadCalls int
	downloaded    []string
}

func (f *fakeClient) LatestVersion(_ context.Context, _ string) (string, error) {
	f.latestCalls++
	return f.latest, f.latestErr
}

func (f *fakeClient) Download(_ context.Context, _ string, version string) (string, error) {
	f.downloadCalls++
	f.downloaded = append(f.downloaded, version)
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	return version, nil
}

type fakeRunner struct {
	cacheCode     int
	fallbackCode  int
	cacheCalls    int
	fallbackCalls int
	lastEntry     string
	lastArgs      []string
}

func (f *fakeRunner) Execute(_ context.Context, _ toolref.Ref, args []string) int {
	f.fallbackCalls++
	f.lastArgs = append([]string(nil), args...)
	return f.fallbackCode
}

func (f *fakeRunner) ExecuteFromCache(_ context.Context, entryPoint string, args []string) int {
	f.cacheCalls++
	f.lastEntry = entryPoint
	f.lastArgs = append([]string(nil), args...)
	return f.cacheCode
}

func newFixture(cached bool) (*Orchestrator, *fakeCache, *fakeClient, *fakeRunner) {
	fc := &fakeCache{entries: map[string]cache.Entry{}}
	if cached {
		fc.entries["my.tool"] = cache.Entry{PackageID: "my.tool", Version: "1.0.0", CommandName: "my.tool"}
		fc.execPath = "/cache/my.tool/1.0.0/tools/my.tool"
	}
	client := &fakeClient{latest: "1.0.0"}
	runner := &fakeRunner{}
	return New(fc, client, runner, nil), fc, client, runner
}

func mustRef(t *testing.T, s string) toolref.Ref {
	t.Helper()
	ref, err := toolref.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ref
}

func TestPinnedReferenceSkipsRegistry(t *testing.T) {
	orc, _, client, _ := newFixture(true)

	orc.Execute(context.Background(), mustRef(t, "my.tool@1.0.0"), nil, false)
	if client.latestCalls != 0 {
		t.Fatalf("pinned reference must not query the registry, got %d calls", client.latestCalls)
	}
}

func TestSkipUpdateSkipsRegistry(t *testing.T) {
	orc, _, client, _ := newFixture(true)

	orc.Execute(context.Background(), mustRef(t, "my.tool"), nil, true)
	if client.latestCalls != 0 {
		t.Fatalf("skipUpdate must suppress the registry query, got %d calls", client.latestCalls)
	}
}

func TestCacheHitRunsFromCache(t *testing.T) {
	orc, _, _, runner := newFixture(true)
	runner.cacheCode = 42

	code := orc.Execute(context.Background(), mustRef(t, "my.tool"), []string{"--flag"}, true)
	if code != 42 {
		t.Fatalf("exit code = %d, want the child's 42", code)
	}
	if runner.cacheCalls != 1 || runner.fallbackCalls != 0 {
		t.Fatalf("cache calls = %d, fallback calls = %d", runner.cacheCalls, runner.fallbackCalls)
	}
	if runner.lastEntry == "" {
		t.Errorf("entry point not passed to the launcher")
	}
	if len(runner.lastArgs) != 1 || runner.lastArgs[0] != "--flag" {
		t.Errorf("args not passed through: %v", runner.lastArgs)
	}
}

func TestCacheMissFallsBackExactlyOnce(t *testing.T) {
	orc, _, _, runner := newFixture(false)
	runner.fallbackCode = 3

	code := orc.Execute(context.Background(), mustRef(t, "my.tool"), nil, true)
	if code != 3 {
		t.Fatalf("exit code = %d, want 3", code)
	}
	if runner.fallbackCalls != 1 || runner.cacheCalls != 0 {
		t.Fatalf("fallback calls = %d, cache calls = %d", runner.fallbackCalls, runner.cacheCalls)
	}
}

func TestRefreshDownloadsNewerVersion(t *testing.T) {
	orc, _, client, runner := newFixture(true)
	client.latest = "2.0.0"
	runner.cacheCode = 42

	// Execute joins the refresh before returning, so the counters are
	// settled once it does.
	code := orc.Execute(context.Background(), mustRef(t, "my.tool"), nil, false)
	if code != 42 {
		t.Fatalf("exit code = %d, want 42", code)
	}
	if client.latestCalls != 1 {
		t.Fatalf("latest calls = %d, want 1", client.latestCalls)
	}
	if client.downloadCalls != 1 {
		t.Fatalf("download calls = %d, want 1", client.downloadCalls)
	}
	if client.downloaded[0] != "2.0.0" {
		t.Errorf("downloaded %q, want 2.0.0", client.downloaded[0])
	}
}

func TestRefreshSameVersionDownloadsNothing(t *testing.T) {
	orc, _, client, _ := newFixture(true)
	client.latest = "1.0.0"

	orc.Execute(context.Background(), mustRef(t, "my.tool"), nil, false)
	if client.downloadCalls != 0 {
		t.Fatalf("download calls = %d, want 0", client.downloadCalls)
	}
}

func TestRefreshDownloadsWhenNothingCached(t *testing.T) {
	orc, _, client, _ := newFixture(false)
	client.latest = "1.0.0"

	orc.Execute(context.Background(), mustRef(t, "my.tool"), nil, false)
	if client.downloadCalls != 1 {
		t.Fatalf("download calls = %d, want 1", client.downloadCalls)
	}
}

func TestRefreshFailureNeverChangesExitCode(t *testing.T) {
	orc, _, client, runner := newFixture(true)
	client.latest = "2.0.0"
	client.downloadErr = errors.New("registry exploded")
	runner.cacheCode = 42

	if code := orc.Execute(context.Background(), mustRef(t, "my.tool"), nil, false); code != 42 {
		t.Fatalf("exit code = %d, want 42 despite refresh failure", code)
	}
}

func TestRefreshLookupFailureIsSwallowed(t *testing.T) {
	orc, _, client, runner := newFixture(true)
	client.latestErr = errors.New("timeout")
	runner.cacheCode = 0

	if code := orc.Execute(context.Background(), mustRef(t, "my.tool"), nil, false); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if client.downloadCalls != 0 {
		t.Fatalf("no download should follow a failed lookup")
	}
}

func TestIsNewerVersion(t *testing.T) {
	cases := []struct {
		candidate string
		baseline  string
		want      bool
	}{
		{"1.1.0", "1.0.0", true},
		{"1.0.0", "1.0.0", false},
		{"1.0.0", "1.1.0", false},
		{"2.0.0", "2.0.0-beta", true},
		{"zz-nightly", "aa-nightly", true},
	}

	for _, tc := range cases {
		if got := IsNewerVersion(tc.candidate, tc.baseline); got != tc.want {
			t.Errorf("IsNewerVersion(%q, %q) = %v, want %v", tc.candidate, tc.baseline, got, tc.want)
		}
	}
}
