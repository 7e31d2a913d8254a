package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last config
// event before firing its callback. Editors often write config files
// as a remove/create pair; debouncing collapses the pair into one
// reload.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a project's configuration when one of its config
// files changes on disk.
type Watcher struct {
	mu sync.Mutex

	root     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(*Resolved)

	timer *time.Timer

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides the debounce interval.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watch starts watching root's directory for config file changes.
// onChange is called with the freshly resolved configuration after
// each change settles; a resolve failure skips the callback and keeps
// the previous configuration in effect.
func Watch(root string, onChange func(*Resolved), opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:     root,
		watcher:  fsw,
		debounce: DefaultDebounce,
		onChange: onChange,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	// Watch the directory rather than the files: most editors replace
	// config files on save, which would drop a per-file watch.
	if err := fsw.Add(root); err != nil {
		fsw.Close()
		return nil, err
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.closeCh)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.closedWg.Wait()
	return err
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.isConfigFile(event.Name) {
				w.schedule()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) isConfigFile(path string) bool {
	base := filepath.Base(path)
	if base == IgnoreFileName {
		return true
	}
	for _, name := range ConfigFileNames {
		if base == name {
			return true
		}
	}
	return false
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	resolved, err := Resolve(w.root)
	if err != nil {
		return
	}
	w.onChange(resolved)
}
