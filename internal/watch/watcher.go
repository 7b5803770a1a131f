package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc is called each time the watcher triggers a filter run.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult holds the output of a single filter run so the watcher can
// report it and track changes between runs.
type RunResult struct {
	Kept       int
	Removed    int
	Changes    []Change
	OutputPath string
}

// Options configures the watch behaviour.
type Options struct {
	// Input is the subtitle script to watch.
	Input string

	// ExtraFiles are additional files to watch (e.g. the config file).
	ExtraFiles []string

	// Debounce is the quiet period before triggering a run.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 500 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run starts the file watcher and blocks until the context is cancelled
// or a SIGINT/SIGTERM signal is received.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	targets, err := resolveTargets(opts.Input, opts.ExtraFiles)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch parent directories: editors commonly save by writing a temp
	// file and renaming it over the original, which drops a file watch.
	if err := addDirs(watcher, targets); err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", opts.Input, opts.Debounce)

	doRun(sigCtx, opts, runFn, "(initial)")

	debouncer := NewDebouncer(opts.Debounce, func(path string) {
		doRun(sigCtx, opts, runFn, filepath.Base(path))
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event) || !targets[filepath.Clean(event.Name)] {
				continue
			}

			opts.Logger.Debug("file changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()),
			)

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// doRun executes a single filter run and prints the status line.
func doRun(ctx context.Context, opts Options, runFn RunFunc, trigger string) {
	now := time.Now().Format("15:04:05")

	result, err := runFn(ctx)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(opts.Out, "[%s] %s → OK (%d kept, %d removed)\n",
		now, trigger, result.Kept, result.Removed)

	if len(result.Changes) > 0 {
		fmt.Fprintf(opts.Out, "  script: %s\n", ChangeSummary(result.Changes))
	}
}

// resolveTargets returns the cleaned absolute paths of the input and extra
// files. The input must exist.
func resolveTargets(input string, extra []string) (map[string]bool, error) {
	if _, err := os.Stat(input); err != nil {
		return nil, fmt.Errorf("watching input: %w", err)
	}

	targets := make(map[string]bool, len(extra)+1)

	for _, f := range append([]string{input}, extra...) {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", f, err)
		}

		targets[filepath.Clean(abs)] = true
	}

	return targets, nil
}

// addDirs adds the parent directory of every target to the watcher once.
func addDirs(watcher *fsnotify.Watcher, targets map[string]bool) error {
	seen := make(map[string]bool)

	for path := range targets {
		dir := filepath.Dir(path)
		if seen[dir] {
			continue
		}

		seen[dir] = true

		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %q: %w", dir, err)
		}
	}

	return nil
}

// isRelevant filters out event types and editor artefacts we never react to.
func isRelevant(event fsnotify.Event) bool {
	if event.Op == 0 {
		return false
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)

	// Ignore editor temporary files and hidden files.
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, "#") {
		return false
	}

	return true
}
