// Package gitops keeps a directory of backup files under version control by
// shelling out to git.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author identifies who a commit is recorded as.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if out, err := git(dir, Author{}, "init", "--quiet").CombinedOutput(); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// EnsureRepo initializes dir as a repository unless it already is one.
func EnsureRepo(dir string) (created bool, err error) {
	if IsRepo(dir) {
		return false, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("creating repo dir: %w", err)
	}
	if err := Init(dir); err != nil {
		return false, err
	}
	return true, nil
}

// CommitFiles stages paths (relative to dir) and commits them. With no paths
// everything is staged. Returns the short commit hash.
func CommitFiles(dir, message string, author Author, paths ...string) (string, error) {
	args := []string{"add", "-A"}
	if len(paths) > 0 {
		args = append([]string{"add", "--"}, paths...)
	}
	if out, err := git(dir, author, args...).CombinedOutput(); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	if out, err := git(dir, author, "commit", "--quiet", "-m", message, "--author", author.String()).CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	out, err := git(dir, author, "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// git builds a command in dir. The author doubles as committer so commits
// work on machines without a global git identity.
func git(dir string, author Author, args ...string) *exec.Cmd {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	if author.Name != "" {
		cmd.Env = append(cmd.Env,
			"GIT_COMMITTER_NAME="+author.Name,
			"GIT_COMMITTER_EMAIL="+author.Email,
		)
	}
	return cmd
}
