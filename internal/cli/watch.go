package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/schemacheck/pkg/ports"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports debounced changes to a fixed set of files.
// Parent directories are watched so atomic renames are seen too.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	timer *time.Timer

	changes chan string
	errors  chan error
}

// WatchFiles starts watching paths. Close releases the watcher.
func WatchFiles(paths []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]struct{}, len(paths)),
		debounce: debounce,
		logger:   logger,
		changes:  make(chan string, 1),
		errors:   make(chan error, 1),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	go w.process()
	return w, nil
}

// Changes delivers the path of the last changed file once its burst settles.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Errors delivers watcher failures.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Close stops the watcher and any pending notification.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) process() {
	for {
		select {
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			if _, ok := w.files[abs]; ok {
				w.logger.Debug("file event", "path", ev.Name, "op", ev.Op.String())
				w.debounceUpdate(ev.Name)
			}
		}
	}
}

func (w *Watcher) debounceUpdate(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.changes <- name:
		default:
		}
	})
}

// RunWatch validates once and again after every change to either file, until
// ctx is done. Read failures are printed and the watch continues.
func RunWatch(ctx context.Context, checker ports.Checker, opts ValidateOptions, logger *slog.Logger) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.DataPath == StdinPath {
		return fmt.Errorf("cannot watch standard input")
	}

	w, err := WatchFiles([]string{opts.DataPath, opts.SchemaPath}, DefaultDebounce, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	runOnce(ctx, checker, opts, out)
	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping watcher")
			return nil
		case err := <-w.Errors():
			logger.Warn("watch error", "error", err)
		case name := <-w.Changes():
			logger.Info("change detected", "path", name)
			fmt.Fprintf(out, "\n--- %s changed, revalidating ---\n", name)
			runOnce(ctx, checker, opts, out)
		}
	}
}

func runOnce(ctx context.Context, checker ports.Checker, opts ValidateOptions, out io.Writer) {
	opts.Out = out
	if _, err := RunValidate(ctx, checker, opts); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}
}
