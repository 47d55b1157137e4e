package httpserver

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces bursts of writes into one rescan.
const DefaultDebounce = 2 * time.Second

// watchDepth covers <root>/<project>/<entry>/subagents.
const watchDepth = 3

// watcher reports debounced changes under a projects root, down to the
// subagents directories.
type watcher struct {
	fs      *fsnotify.Watcher
	root    string
	changed chan struct{}
	done    chan struct{}
	logger  zerolog.Logger

	mu     sync.Mutex
	delay  time.Duration
	timer  *time.Timer
	closed bool
}

func newWatcher(root string, delay time.Duration, logger zerolog.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}

	w := &watcher{
		fs:      fsw,
		root:    root,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  logger,
		delay:   delay,
	}

	if err := fsw.Add(root); err != nil {
		fsw.Close()
		return nil, err
	}
	w.addTree(root, watchDepth)

	go w.loop()
	return w, nil
}

// addTree watches directories below dir down to depth levels.
func (w *watcher) addTree(dir string, depth int) {
	if depth <= 0 {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Debug().Err(err).Str("dir", path).Msg("Cannot watch directory")
			continue
		}
		w.addTree(path, depth-1)
	}
}

// remaining is how many directory levels below dir are still of interest.
func (w *watcher) remaining(dir string) int {
	rel, err := filepath.Rel(w.root, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return 0
	}
	return watchDepth - len(strings.Split(rel, string(filepath.Separator)))
}

func (w *watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && w.remaining(event.Name) >= 0 {
					_ = w.fs.Add(event.Name)
					w.addTree(event.Name, w.remaining(event.Name))
				}
			}
			w.trigger()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Debug().Err(err).Msg("Watcher error")
		}
	}
}

// trigger restarts the debounce timer.
func (w *watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, func() {
		select {
		case w.changed <- struct{}{}:
		default:
		}
	})
}

// Changed fires once per debounced burst of filesystem events.
func (w *watcher) Changed() <-chan struct{} {
	return w.changed
}

func (w *watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.fs.Close()
}
