package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/github/gh-pipelines/pkg/console"
	"github.com/github/gh-pipelines/pkg/logger"
)

var watchLog = logger.New("cli:compile_watch")

// watchDebounce coalesces the bursts of events editors produce on save.
var watchDebounce = 300 * time.Millisecond

// watchAndCompile recompiles definitions as they change until ctx is done.
// Directories are watched rather than files so that editors replacing a
// file on save are still followed.
func watchAndCompile(ctx context.Context, config CompileConfig) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]string, len(config.Files))
	dirs := make(map[string]bool)
	for _, file := range config.Files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", file, err)
		}
		watched[abs] = file
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watchLog.Printf("Watching directory %s", dir)
	}

	fmt.Fprintln(os.Stderr, console.FormatInfoMessage(
		fmt.Sprintf("Watching %d definition(s) for changes, press Ctrl+C to stop", len(watched))))

	pending := make(map[string]bool)
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			watchLog.Print("Watch cancelled")
			fmt.Fprintln(os.Stderr, console.FormatInfoMessage("Stopped watching"))
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			file, tracked := watched[filepath.Clean(event.Name)]
			if !tracked || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			watchLog.Printf("Change detected: %s (%s)", event.Name, event.Op)
			pending[file] = true
			fire = time.After(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("watch error: %v", err)))

		case <-fire:
			fire = nil
			files := make([]string, 0, len(pending))
			for file := range pending {
				files = append(files, file)
			}
			sort.Strings(files)
			clear(pending)

			if config.Verbose {
				fmt.Fprintln(os.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Recompiling %v", files)))
			}
			// Failures are reported and watching continues.
			_ = compileAndReport(files, config)
		}
	}
}
