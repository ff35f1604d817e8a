package file

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/meridian-labs/yarra/internal/logger"
)

// debounceDelay coalesces the burst of events editors emit when saving
// a file (write, chmod, rename-into-place) into one reload.
const debounceDelay = 200 * time.Millisecond

// Watcher reloads the config store when its file changes on disk and
// notifies the caller so dependent components can be swapped. The watch
// covers the config directory rather than the file itself, because most
// editors replace the file on save.
type Watcher struct {
	store    *ConfigStore
	onReload func()
	fsw      *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher creates a watcher over the store's config file. onReload
// runs after each successful reload; it may be nil.
func NewWatcher(store *ConfigStore, onReload func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(store.Path())); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		store:    store,
		onReload: onReload,
		fsw:      fsw,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.isConfigEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceDelay)
				timerC = timer.C
			} else {
				timer.Reset(debounceDelay)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("config watch error: %v", err)
		}
	}
}

// isConfigEvent reports whether an event concerns the config file and
// represents a content change.
func (w *Watcher) isConfigEvent(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != filepath.Base(w.store.Path()) {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	if err := w.store.Load(); err != nil {
		logger.Warn("config reload failed, keeping previous values: %v", err)
		return
	}
	logger.Debug("config reloaded from %s", w.store.Path())
	if w.onReload != nil {
		w.onReload()
	}
}
