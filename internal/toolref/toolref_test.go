package toolref

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input   string
		id      string
		version string
	}{
		{"mytool", "mytool", ""},
		{"my.tool", "my.tool", ""},
		{"my.tool@1.2.3", "my.tool", "1.2.3"},
		{"my.tool@1.0.0-beta", "my.tool", "1.0.0-beta"},
		// The split happens on the last '@'.
		{"scope@name@2.0.0", "scope@name", "2.0.0"},
		// A leading '@' is part of the name, not a separator.
		{"@tool", "@tool", ""},
		{"@scope/tool@1.0.0", "@scope/tool", "1.0.0"},
	}

	for _, tc := range cases {
		ref, err := Parse(tc.input)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", tc.input, err)
			continue
		}
		if ref.PackageID != tc.id || ref.Version != tc.version {
			t.Errorf("Parse(%q) = %+v, want id=%q version=%q", tc.input, ref, tc.id, tc.version)
		}
	}
}

func TestParseRejectsBlankInput(t *testing.T) {
	for _, input := range []string{"", " ", "\t", "  \n "} {
		if _, err := Parse(input); !errors.Is(err, ErrEmpty) {
			t.Errorf("Parse(%q) err = %v, want ErrEmpty", input, err)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, input := range []string{"mytool", "my.tool@1.2.3", "scope@name@2.0.0", "@tool"} {
		ref, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		if got := ref.String(); got != input {
			t.Errorf("round trip of %q produced %q", input, got)
		}
	}
}

func TestPinned(t *testing.T) {
	pinned, _ := Parse("tool@1.0.0")
	if !pinned.Pinned() {
		t.Errorf("expected %q to be pinned", pinned)
	}
	unpinned, _ := Parse("tool")
	if unpinned.Pinned() {
		t.Errorf("expected %q to be unpinned", unpinned)
	}
}
