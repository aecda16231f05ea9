package cli

import (
	"strings"
	"testing"

	"pkgrun/internal/cache"
)

func TestDistinctIDsCollapsesVersions(t *testing.T) {
	entries := []cache.Entry{
		{PackageID: "my.tool", Version: "1.0.0"},
		{PackageID: "My.Tool", Version: "2.0.0"},
		{PackageID: "other.tool", Version: "1.0.0"},
	}

	ids := distinctIDs(entries)
	if len(ids) != 2 {
		t.Fatalf("expected 2 distinct ids, got %v", ids)
	}
	if ids[0] != "my.tool" || ids[1] != "other.tool" {
		t.Errorf("unexpected ids: %v", ids)
	}
}

func TestConfirmClear(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tc := range cases {
		var out strings.Builder
		got := confirmClear(strings.NewReader(tc.input), &out, 2)
		if got != tc.want {
			t.Errorf("confirmClear(%q) = %v, want %v", tc.input, got, tc.want)
		}
		if !strings.Contains(out.String(), "Remove 2 installed tool(s)?") {
			t.Errorf("prompt missing from output: %q", out.String())
		}
	}
}
