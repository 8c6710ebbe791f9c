// Package ticket derives tracker ticket identifiers from git branch names.
package ticket

import (
	"regexp"
	"strings"
)

// None is the identifier reported when no branch name is available,
// such as a detached HEAD or a directory outside any repository.
const None = "NO-TICKET"

// idPattern matches ticket identifiers of the form PREFIX-NUMBER
// anywhere in a branch name, in either case.
var idPattern = regexp.MustCompile(`[A-Za-z]+-[0-9]+`)

// FromBranch derives a ticket identifier from a branch name. The first
// PREFIX-NUMBER substring wins and is returned upper-cased. A branch
// name without one is returned verbatim, and an empty branch name
// yields None.
func FromBranch(branch string) string {
	if branch == "" {
		return None
	}
	if m := idPattern.FindString(branch); m != "" {
		return strings.ToUpper(m)
	}
	return branch
}
