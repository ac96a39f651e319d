package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sagelang/sage/config"
)

// watchFile reruns a script whenever it changes on disk. Blocks until
// the watcher fails or the process is interrupted.
func watchFile(filename string, cfg *config.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", filename, err)
	}

	// Watch the directory rather than the file itself: editors often
	// replace the file on save, which invalidates a direct file watch.
	watchDir := filepath.Dir(absPath)
	if err := watcher.Add(watchDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", watchDir, err)
	}

	logInfo(os.Stdout, "watching %s (Ctrl+C to stop)", filename)
	runWatched(absPath, cfg)

	// Debounce rapid changes so editor save storms trigger one rerun
	debounce := cfg.Watch.Debounce
	var lastRun time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}

			if time.Since(lastRun) < debounce {
				continue
			}
			lastRun = time.Now()

			if cfg.Watch.ClearScreen {
				fmt.Print("\033[2J\033[H")
			}
			logInfo(os.Stdout, "%s changed, rerunning", filename)
			runWatched(absPath, cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logError(os.Stderr, "watcher error: %v", err)
		}
	}
}

// runWatched executes the script once, reporting the outcome without
// terminating the watch loop.
func runWatched(filename string, cfg *config.Config) {
	if code := executeFile(filename, cfg); code == 0 {
		logInfo(os.Stdout, "ok")
	} else {
		logError(os.Stderr, "run failed")
	}
}

func logInfo(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "[WATCH] "+format+"\n", args...)
}

func logError(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "[WATCH ERROR] "+format+"\n", args...)
}
