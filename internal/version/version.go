package version

import (
	"strconv"
	"strings"
)

// Version is a tolerant semantic-version-like identifier. Version strings
// arrive from untrusted places (cache directory names, registry responses)
// and are routinely malformed, so parsing reports failure as a boolean
// outcome rather than an error.
type Version struct {
	Major      int32
	Minor      int32
	Patch      int32
	Prerelease string
}

// Parse interprets input as up to four dot-separated numeric components with
// an optional prerelease label after the first hyphen. Missing components
// default to zero; a fourth component is accepted but not significant for
// ordering. A malformed or out-of-range component, or more than four
// components, is a parse failure.
func Parse(input string) (Version, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Version{}, false
	}

	core := input
	prerelease := ""
	if idx := strings.Index(input, "-"); idx >= 0 {
		core = input[:idx]
		prerelease = input[idx+1:]
	}

	parts := strings.Split(core, ".")
	if len(parts) > 4 {
		return Version{}, false
	}

	nums := make([]int32, 0, len(parts))
	for _, part := range parts {
		val, err := strconv.ParseInt(part, 10, 32)
		if err != nil {
			return Version{}, false
		}
		nums = append(nums, int32(val))
	}

	v := Version{Prerelease: prerelease}
	if len(nums) > 0 {
		v.Major = nums[0]
	}
	if len(nums) > 1 {
		v.Minor = nums[1]
	}
	if len(nums) > 2 {
		v.Patch = nums[2]
	}
	return v, true
}

// Compare orders a against b: negative, zero, or positive. Ordering is
// lexicographic on (major, minor, patch); when those tie, a release outranks
// any prerelease, and two prerelease labels compare as case-insensitive
// strings.
func Compare(a, b Version) int {
	if a.Major != b.Major {
		return compareInt32(a.Major, b.Major)
	}
	if a.Minor != b.Minor {
		return compareInt32(a.Minor, b.Minor)
	}
	if a.Patch != b.Patch {
		return compareInt32(a.Patch, b.Patch)
	}

	switch {
	case a.Prerelease == "" && b.Prerelease == "":
		return 0
	case a.Prerelease == "":
		return 1
	case b.Prerelease == "":
		return -1
	}
	return strings.Compare(strings.ToLower(a.Prerelease), strings.ToLower(b.Prerelease))
}

// IsNewer reports whether candidate is strictly newer than baseline. When
// both strings parse the structured ordering decides; otherwise the
// comparison degrades to a case-insensitive lexicographic one.
func IsNewer(candidate, baseline string) bool {
	cv, cok := Parse(candidate)
	bv, bok := Parse(baseline)
	if cok && bok {
		return Compare(cv, bv) > 0
	}
	return strings.ToLower(candidate) > strings.ToLower(baseline)
}

func compareInt32(a, b int32) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
