// Package git shells out to the git CLI for the handful of repository
// facts the sync needs.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// run executes git with the given arguments against the repository
// containing dir and returns trimmed stdout. Stderr is folded into the
// returned error.
func run(ctx context.Context, dir string, args ...string) (string, error) {
	full := append([]string{"-C", dir}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), dir, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// TopLevel returns the top-level directory of the repository containing
// dir. It fails when dir is not inside a git work tree.
func TopLevel(ctx context.Context, dir string) (string, error) {
	return run(ctx, dir, "rev-parse", "--show-toplevel")
}

// CurrentBranch returns the name of the checked-out branch, or an empty
// string on a detached HEAD.
func CurrentBranch(ctx context.Context, dir string) (string, error) {
	return run(ctx, dir, "branch", "--show-current")
}
