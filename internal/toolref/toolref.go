// Package toolref parses user-supplied tool references of the form
// name[@version].
package toolref

import (
	"errors"
	"strings"
)

// Ref identifies a packaged tool and an optional pinned version. Package ids
// are matched case-insensitively everywhere; the ref preserves the user's
// spelling.
type Ref struct {
	PackageID string
	Version   string
}

// ErrEmpty is returned when the reference token is missing or blank.
var ErrEmpty = errors.New("tool reference is empty")

// Parse splits input on the last '@' occurring strictly after the first
// character, so a leading '@' is part of the name rather than a separator.
// Without such an '@' the reference is unpinned.
func Parse(input string) (Ref, error) {
	if strings.TrimSpace(input) == "" {
		return Ref{}, ErrEmpty
	}
	if idx := strings.LastIndex(input, "@"); idx > 0 {
		return Ref{PackageID: input[:idx], Version: input[idx+1:]}, nil
	}
	return Ref{PackageID: input}, nil
}

// Pinned reports whether the reference carries an explicit version, which
// disables automatic background refresh.
func (r Ref) Pinned() bool {
	return r.Version != ""
}

// String renders the canonical form, the inverse of Parse for canonical
// inputs.
func (r Ref) String() string {
	if r.Version == "" {
		return r.PackageID
	}
	return r.PackageID + "@" + r.Version
}
