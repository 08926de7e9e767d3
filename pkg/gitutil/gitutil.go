// Package gitutil locates git repositories on disk.
package gitutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/github/gh-pipelines/pkg/logger"
)

var log = logger.New("gitutil:gitutil")

// ErrNotInRepository is returned when no enclosing git repository exists.
var ErrNotInRepository = errors.New("not in a git repository")

// FindGitRoot walks up from dir until it finds a directory containing .git.
func FindGitRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	log.Printf("Searching for git root from %s", abs)

	for current := abs; ; {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			log.Printf("Found git root: %s", current)
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("%w: %s", ErrNotInRepository, abs)
		}
		current = parent
	}
}

// RelativeToRoot returns path relative to root using forward slashes, the
// form GitHub workflow files use.
func RelativeToRoot(root, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
