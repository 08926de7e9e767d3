// Package testutil holds helpers shared by the test suites.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

var (
	testRunDir     string
	testRunDirOnce sync.Once
)

// GetTestRunDir returns a per-process directory under the system temp dir
// that groups all directories created by TempDir.
func GetTestRunDir() string {
	testRunDirOnce.Do(func() {
		name := fmt.Sprintf("run-%s-%d", time.Now().Format("20060102-150405"), os.Getpid())
		testRunDir = filepath.Join(os.TempDir(), "gh-pipelines-test-runs", name)
		if err := os.MkdirAll(testRunDir, 0o755); err != nil {
			panic(fmt.Sprintf("failed to create test run directory: %v", err))
		}
	})
	return testRunDir
}

// TempDir creates a directory matching pattern inside the test run
// directory and removes it when t finishes.
func TempDir(t testing.TB, pattern string) string {
	t.Helper()
	dir, err := os.MkdirTemp(GetTestRunDir(), pattern)
	if err != nil {
		t.Fatalf("failed to create temp directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})
	return dir
}

// StripYAMLCommentHeader drops the leading comment block and blank lines of
// a generated YAML file. Input made only of comments is returned unchanged.
func StripYAMLCommentHeader(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return strings.Join(lines[i:], "\n")
	}
	return content
}
