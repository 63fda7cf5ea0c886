// Package watcher reports changes to the data files a session was loaded
// from, so the viewer can reload them. It uses fsnotify on the containing
// directories and falls back to polling when that is unavailable.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/netview/pkg/debug"
)

// DefaultPollInterval is how often files are stat'ed in polling mode.
const DefaultPollInterval = 2 * time.Second

var (
	ErrNoPaths        = errors.New("watcher: no paths to watch")
	ErrFileRemoved    = errors.New("watcher: watched file was removed")
	ErrPermission     = errors.New("watcher: permission denied")
	ErrAlreadyStarted = errors.New("watcher: already started")
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets how long the files must stay quiet before a
// change is reported.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.quiet = d }
}

// WithPollInterval sets the polling period.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.interval = d }
}

// WithOnChange registers a callback run once per reported change.
func WithOnChange(fn func()) WatcherOption {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError registers a callback for removed files and watch errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll skips fsnotify. NETVIEW_FORCE_POLL=1 does the same.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) { w.forcePoll = force }
}

// stamp is what polling compares. The zero stamp means "not present".
type stamp struct {
	mtime time.Time
	size  int64
}

func (s stamp) present() bool { return !s.mtime.IsZero() }

func (s stamp) same(o stamp) bool { return s.mtime.Equal(o.mtime) && s.size == o.size }

func stampOf(info os.FileInfo) stamp {
	return stamp{mtime: info.ModTime(), size: info.Size()}
}

// Watcher monitors a set of files. Changes to any of them are debounced
// together into one notification.
type Watcher struct {
	paths     []string
	quiet     time.Duration
	interval  time.Duration
	onChange  func()
	onError   func(error)
	forcePoll bool

	changes   chan struct{}
	debouncer *Debouncer

	mu      sync.RWMutex
	stamps  map[string]stamp
	fsw     *fsnotify.Watcher
	polling bool
	cancel  context.CancelFunc
}

// NewWatcher creates a watcher for paths. Paths are made absolute and
// duplicates dropped.
func NewWatcher(paths []string, opts ...WatcherOption) (*Watcher, error) {
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		abs = append(abs, a)
	}
	slices.Sort(abs)
	abs = slices.Compact(abs)
	if len(abs) == 0 {
		return nil, ErrNoPaths
	}

	w := &Watcher{
		paths:    abs,
		quiet:    DefaultDebounceDuration,
		interval: DefaultPollInterval,
		onChange: func() {},
		onError:  func(error) {},
		changes:  make(chan struct{}, 1),
		stamps:   make(map[string]stamp, len(abs)),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.interval <= 0 {
		w.interval = DefaultPollInterval
	}
	w.debouncer = NewDebouncer(w.quiet)
	return w, nil
}

// Start records the current state of every file and begins watching. A
// file that does not exist yet is reported when it appears.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return ErrAlreadyStarted
	}

	for _, p := range w.paths {
		info, err := os.Stat(p)
		switch {
		case err == nil:
			w.stamps[p] = stampOf(info)
		case os.IsPermission(err):
			return ErrPermission
		default:
			w.stamps[p] = stamp{}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.polling = w.forcePoll || envBool("NETVIEW_FORCE_POLL")
	if !w.polling {
		fsw, err := watchDirs(w.paths)
		if err != nil {
			debug.Log("watcher: fsnotify unavailable, polling: %v", err)
			w.polling = true
		} else {
			w.fsw = fsw
			go w.runEvents(ctx, fsw)
		}
	}
	if w.polling {
		go w.runPolling(ctx, w.interval)
	}
	w.cancel = cancel
	return nil
}

// watchDirs watches the directory of every file, which survives editors
// that replace files by renaming.
func watchDirs(paths []string) (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	added := make(map[string]bool)
	for _, p := range paths {
		dir := filepath.Dir(p)
		if added[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
		added[dir] = true
	}
	return fsw, nil
}

// Stop ends watching and drops a pending notification. It may be called
// more than once, and Start may be called again afterwards.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.cancel = nil
	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
	w.debouncer.Cancel()
}

// IsPolling reports whether the watcher fell back to polling.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cancel != nil
}

// Changed receives once per debounced burst of changes. It is never
// closed.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changes
}

// Paths returns the watched absolute paths, sorted.
func (w *Watcher) Paths() []string {
	return slices.Clone(w.paths)
}

func (w *Watcher) watches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	_, found := slices.BinarySearch(w.paths, abs)
	return found
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func (w *Watcher) runEvents(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.watches(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Remove) {
				w.onError(ErrFileRemoved)
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				debug.Log("watcher: %s %s", ev.Op, ev.Name)
				w.debouncer.Trigger(w.notify)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) runPolling(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.poll() {
				w.debouncer.Trigger(w.notify)
			}
		}
	}
}

// poll stats every file and reports whether any appeared or changed. A
// removal is reported once, after which the file counts as absent.
func (w *Watcher) poll() bool {
	changed := false
	for _, p := range w.paths {
		var next stamp
		info, err := os.Stat(p)
		switch {
		case err == nil:
			next = stampOf(info)
		case os.IsNotExist(err):
		case os.IsPermission(err):
			w.onError(ErrPermission)
			continue
		default:
			w.onError(err)
			continue
		}

		w.mu.Lock()
		prev := w.stamps[p]
		w.stamps[p] = next
		w.mu.Unlock()

		switch {
		case !next.present() && prev.present():
			w.onError(ErrFileRemoved)
		case next.present() && !next.same(prev):
			changed = true
		}
	}
	return changed
}

// notify runs the callback and signals Changed without blocking.
func (w *Watcher) notify() {
	if !w.IsStarted() {
		return
	}
	w.onChange()
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
